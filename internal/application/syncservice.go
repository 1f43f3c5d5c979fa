package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
	"github.com/ericfisherdev/profilesync/internal/domain/port/driven"
)

// backupSuffix is appended to the target path to form the backup path. The
// backup is overwritten with the pre-merge content on every successful run.
const backupSuffix = ".backup"

// SyncService orchestrates one synchronization pass: scan the credentials
// file, fetch and merge each directive's remote profiles, then commit the
// result with a backup of the previous version.
//
// A single SyncService is safe for sequential reuse across files. Concurrent
// invocations against the same target file are not safe and must be
// serialized by the caller.
type SyncService struct {
	fetcher       driven.SourceFetcher
	runs          driven.RunStore // nil disables history recording
	defaultBranch string
	warnMissing   bool
}

// NewSyncService creates a SyncService. runs may be nil to disable history
// recording (dry runs, or when the history store is unavailable).
func NewSyncService(fetcher driven.SourceFetcher, runs driven.RunStore, defaultBranch string, warnMissing bool) *SyncService {
	return &SyncService{
		fetcher:       fetcher,
		runs:          runs,
		defaultBranch: defaultBranch,
		warnMissing:   warnMissing,
	}
}

// Render produces the new credentials file content without touching disk,
// along with the remote sources referenced by its directives. Any directive,
// fetch, or merge failure aborts the whole pass.
func (s *SyncService) Render(ctx context.Context, path string) (string, []model.SyncSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading credentials file %s: %w", path, err)
	}
	return rewrite(ctx, string(raw), s.defaultBranch, s.resolveBlock)
}

// Sync rewrites the credentials file in place. Only after the full pass
// succeeds does it copy the original to its backup path and then atomically
// replace the original with the new content. On any failure the target file
// and any prior backup are left untouched.
func (s *SyncService) Sync(ctx context.Context, path string) error {
	started := time.Now()
	slog.Info("synchronizing credentials file", "path", path)

	content, sources, err := s.Render(ctx, path)
	if err != nil {
		s.recordRun(ctx, path, sources, started, err)
		return err
	}

	// Abort-before-commit: a cancellation arriving before the final write is
	// a failure path with no output written.
	if err := ctx.Err(); err != nil {
		s.recordRun(ctx, path, sources, started, err)
		return err
	}

	if err := s.commit(path, content); err != nil {
		s.recordRun(ctx, path, sources, started, err)
		return err
	}

	s.recordRun(ctx, path, sources, started, nil)
	slog.Info("credentials file updated",
		"path", path,
		"backup", path+backupSuffix,
		"directives", len(sources),
	)
	return nil
}

// resolveBlock fetches a directive's remote source, parses the named profile
// file, applies overrides, and returns the merged block lines.
func (s *SyncService) resolveBlock(ctx context.Context, d *model.Directive) ([]string, error) {
	dir, err := s.fetcher.Fetch(ctx, d.Locator, d.Branch)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(d.Filename)))
	if err != nil {
		// A missing or unreadable file within a fetched tree is a retrieval
		// failure from the directive's point of view.
		return nil, &driven.FetchError{Locator: d.Locator, Branch: d.Branch, Err: err}
	}

	sections, err := parseProfiles(string(raw), d)
	if err != nil {
		return nil, err
	}

	applyOverrides(sections, &d.Overrides)

	if err := checkMissingOverrides(sections, d, s.warnMissing); err != nil {
		return nil, err
	}

	slog.Debug("merged managed block",
		"locator", d.Locator,
		"branch", d.Branch,
		"filename", d.Filename,
		"sections", len(sections),
	)
	return renderSections(sections), nil
}

// commit backs up the original file and then atomically writes the new
// content. The backup copy must exist before the original is altered: if the
// copy fails, the write does not happen.
func (s *SyncService) commit(path, content string) error {
	if err := copyFile(path, path+backupSuffix); err != nil {
		return fmt.Errorf("writing backup %s: %w", path+backupSuffix, err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// recordRun persists the run outcome to the history store. History is
// ancillary: failures are logged, never surfaced to the sync result.
func (s *SyncService) recordRun(ctx context.Context, path string, sources []model.SyncSource, started time.Time, runErr error) {
	if s.runs == nil {
		return
	}

	run := model.SyncRun{
		TargetFile: path,
		Status:     model.RunStatusSuccess,
		Directives: len(sources),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Sources:    sources,
	}
	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	}

	// Recording must still work when the run failed due to cancellation.
	if _, err := s.runs.Record(context.WithoutCancel(ctx), run); err != nil {
		slog.Warn("recording sync run failed", "error", err)
	}
}

// copyFile copies src to dst, truncating dst if it exists. dst ends up with
// src's permission bits; a credentials file held at 0600 must not gain a
// world-readable backup.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	// O_CREATE leaves a pre-existing dst's mode alone; align it explicitly.
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		out.Close()
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
