// Package gitcli implements the SourceFetcher port by shelling out to the
// git binary, keeping one clone per repository under the work directory.
package gitcli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/profilesync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// clonePath is the subdirectory of the work directory that holds clones.
const clonePath = "git"

// Fetcher clones or updates git repositories served over ssh (or a local
// file:// path) and returns the working tree at the requested branch.
type Fetcher struct {
	workDir string
	gitPath string
}

// New creates a Fetcher that stores clones under workDir.
func New(workDir string) *Fetcher {
	return &Fetcher{
		workDir: workDir,
		gitPath: "git",
	}
}

// CanHandle recognizes ssh://, scp-style git@, and file:// locators that end
// in .git.
func (f *Fetcher) CanHandle(locator string) bool {
	if !strings.HasSuffix(locator, ".git") {
		return false
	}
	return strings.HasPrefix(locator, "ssh://") ||
		strings.HasPrefix(locator, "git@") ||
		strings.HasPrefix(locator, "file://")
}

// Fetch clones the repository on first use, updates the existing clone
// otherwise, and switches it to the requested branch. The returned directory
// is the clone's working tree.
func (f *Fetcher) Fetch(ctx context.Context, locator, branch string) (string, error) {
	// The branch is passed to git as a positional argument; a leading dash
	// would be parsed as an option instead of a ref.
	if strings.HasPrefix(branch, "-") {
		return "", &driven.FetchError{Locator: locator, Branch: branch, Err: fmt.Errorf("invalid branch name %q", branch)}
	}

	repoDir := filepath.Join(f.workDir, clonePath, repoName(locator))

	_, statErr := os.Stat(repoDir)
	exists := statErr == nil

	if exists {
		slog.Info("updating clone", "locator", locator, "path", repoDir)
		if err := f.run(ctx, repoDir, "fetch", "origin"); err != nil {
			return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
		}
	} else {
		slog.Info("cloning", "locator", locator, "path", repoDir)
		if err := os.MkdirAll(filepath.Dir(repoDir), 0o755); err != nil {
			return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
		}
		if err := f.run(ctx, filepath.Dir(repoDir), "clone", locator, filepath.Base(repoDir)); err != nil {
			return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
		}
	}

	// switch in guess mode creates a local branch tracking origin/<branch>
	// when one does not exist yet.
	if err := f.run(ctx, repoDir, "switch", branch); err != nil {
		return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
	}

	if exists {
		if err := f.run(ctx, repoDir, "pull", "--ff-only"); err != nil {
			return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
		}
	}

	return repoDir, nil
}

// run executes one git command in dir, folding stderr into the error.
func (f *Fetcher) run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, f.gitPath, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// repoName derives the clone directory name from a locator: the last path
// component with any .git suffix removed. scp-style locators
// (git@host:org/repo.git) are handled by also splitting on the colon.
func repoName(locator string) string {
	name := strings.TrimSuffix(locator, ".git")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "repo"
	}
	return name
}
