// Package github implements the SourceFetcher port using the GitHub
// Contents API, for teams whose profile repositories live on github.com
// without ssh access from every workstation.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/profilesync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// locatorPrefix is the locator form this fetcher recognizes.
const locatorPrefix = "https://github.com/"

// treePath is the subdirectory of the work directory that holds materialized
// repository trees.
const treePath = "github"

// maxDirEntries is the Contents API cap on directory listings. A listing that
// hits the cap may be silently truncated, so it is treated as a failure
// rather than materializing an incomplete tree.
const maxDirEntries = 1000

// Fetcher materializes GitHub repository trees through the Contents API with
// the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client, PAT auth when a token is set)
type Fetcher struct {
	gh      *gh.Client
	workDir string
}

// NewFetcher creates a Fetcher that stores materialized trees under workDir.
// token may be empty for public repositories.
func NewFetcher(token, workDir string) *Fetcher {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Fetcher{
		gh:      client,
		workDir: workDir,
	}
}

// NewFetcherWithHTTPClient creates a Fetcher with a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection of
// an httptest server.
func NewFetcherWithHTTPClient(httpClient *http.Client, baseURL, workDir string) (*Fetcher, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	client.BaseURL = u

	return &Fetcher{
		gh:      client,
		workDir: workDir,
	}, nil
}

// CanHandle recognizes https://github.com/owner/repo locators.
func (f *Fetcher) CanHandle(locator string) bool {
	return strings.HasPrefix(locator, locatorPrefix)
}

// Fetch downloads the repository tree at the given branch into the work
// directory and returns the resulting local directory. The tree is rebuilt
// on every call; within a run the fetch cache prevents repeats.
func (f *Fetcher) Fetch(ctx context.Context, locator, branch string) (string, error) {
	owner, repo, err := splitLocator(locator)
	if err != nil {
		return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
	}

	dest := filepath.Join(f.workDir, treePath, owner+"-"+repo+"-"+sanitizeBranch(branch))
	if err := os.RemoveAll(dest); err != nil {
		return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
	}

	slog.Info("downloading repository tree", "locator", locator, "branch", branch)
	if err := f.materialize(ctx, owner, repo, branch, "", dest); err != nil {
		return "", &driven.FetchError{Locator: locator, Branch: branch, Err: err}
	}

	return dest, nil
}

// materialize recursively writes the contents of path (a file or directory
// within the repository) under dest.
func (f *Fetcher) materialize(ctx context.Context, owner, repo, branch, path, dest string) error {
	opts := &gh.RepositoryContentGetOptions{Ref: branch}

	file, entries, resp, err := f.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return fmt.Errorf("fetching contents of %q: %w", path, err)
	}
	logRateLimit(resp, owner+"/"+repo, path)

	if file != nil {
		content, err := file.GetContent()
		if err != nil {
			return fmt.Errorf("decoding %q: %w", path, err)
		}
		target := filepath.Join(dest, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, []byte(content), 0o600)
	}

	if len(entries) >= maxDirEntries {
		return fmt.Errorf("directory %q has %d or more entries, listing may be truncated", path, maxDirEntries)
	}

	for _, entry := range entries {
		switch entry.GetType() {
		case "file", "dir":
			if err := f.materialize(ctx, owner, repo, branch, entry.GetPath(), dest); err != nil {
				return err
			}
		default:
			// Symlinks and submodules are not profile files.
		}
	}
	return nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, repo, path string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"repo", repo,
		"path", path,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low", "remaining", resp.Rate.Remaining)
	}
}

// splitLocator extracts "owner" and "repo" from an https://github.com/owner/repo
// locator, tolerating a trailing slash or .git suffix.
func splitLocator(locator string) (string, string, error) {
	rest := strings.TrimPrefix(locator, locatorPrefix)
	rest = strings.TrimSuffix(rest, ".git")
	rest = strings.TrimSuffix(rest, "/")

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid github locator %q: expected %sowner/repo", locator, locatorPrefix)
	}
	return parts[0], parts[1], nil
}

// sanitizeBranch makes a branch name safe as a directory name component.
func sanitizeBranch(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}
