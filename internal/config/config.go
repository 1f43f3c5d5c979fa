// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration. Values come from PROFILESYNC_
// environment variables, with the credentials file overridable from the
// command line.
type Config struct {
	CredentialsFile string
	WorkDir         string
	HistoryDB       string
	DefaultBranch   string
	GitHubToken     string
}

// Load reads configuration from environment variables and returns a
// validated Config. credentialsFile, when non-empty, overrides
// PROFILESYNC_CREDENTIALS_FILE (it is the --credentials-file flag).
// Defaults: credentials file ~/.aws/credentials, work dir "sync" beside the
// credentials file, history db "history.db" inside the work dir, default
// branch "master". PROFILESYNC_GITHUB_TOKEN is optional and only needed for
// private repositories fetched through the GitHub API.
func Load(credentialsFile string) (*Config, error) {
	if credentialsFile == "" {
		credentialsFile = os.Getenv("PROFILESYNC_CREDENTIALS_FILE")
	}
	if credentialsFile == "" {
		credentialsFile = filepath.Join("~", ".aws", "credentials")
	}

	credentialsFile, err := expandHome(credentialsFile)
	if err != nil {
		return nil, err
	}

	workDir := filepath.Join(filepath.Dir(credentialsFile), "sync")
	if v, ok := os.LookupEnv("PROFILESYNC_WORK_DIR"); ok && v != "" {
		if workDir, err = expandHome(v); err != nil {
			return nil, err
		}
	}

	historyDB := filepath.Join(workDir, "history.db")
	if v, ok := os.LookupEnv("PROFILESYNC_HISTORY_DB"); ok && v != "" {
		if historyDB, err = expandHome(v); err != nil {
			return nil, err
		}
	}

	defaultBranch := "master"
	if v, ok := os.LookupEnv("PROFILESYNC_DEFAULT_BRANCH"); ok && v != "" {
		defaultBranch = v
	}

	return &Config{
		CredentialsFile: credentialsFile,
		WorkDir:         workDir,
		HistoryDB:       historyDB,
		DefaultBranch:   defaultBranch,
		GitHubToken:     os.Getenv("PROFILESYNC_GITHUB_TOKEN"),
	}, nil
}

// expandHome replaces a leading ~ with the current user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory for %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
