package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	gitcliadapter "github.com/ericfisherdev/profilesync/internal/adapter/driven/gitcli"
	githubadapter "github.com/ericfisherdev/profilesync/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/profilesync/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/profilesync/internal/application"
	"github.com/ericfisherdev/profilesync/internal/config"
	"github.com/ericfisherdev/profilesync/internal/domain/port/driven"
)

func newSyncCmd() *cobra.Command {
	var (
		credentialsFile string
		dryRun          bool
		warnMissing     bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch remote profile definitions and rewrite managed blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), credentialsFile, dryRun, warnMissing)
		},
	}

	cmd.Flags().StringVarP(&credentialsFile, "credentials-file", "c", "", "credentials file to update (default ~/.aws/credentials)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "print the new file to stdout without modifying anything on disk")
	cmd.Flags().BoolVarP(&warnMissing, "warn-missing", "w", false, "treat missing overrides as a warning instead of an error")
	return cmd
}

func runSync(ctx context.Context, credentialsFile string, dryRun, warnMissing bool) error {
	cfg, err := config.Load(credentialsFile)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"credentials_file", cfg.CredentialsFile,
		"work_dir", cfg.WorkDir,
		"default_branch", cfg.DefaultBranch,
	)

	fetcher := application.NewFetchCache(
		gitcliadapter.New(cfg.WorkDir),
		githubadapter.NewFetcher(cfg.GitHubToken, cfg.WorkDir),
	)

	if dryRun {
		svc := application.NewSyncService(fetcher, nil, cfg.DefaultBranch, warnMissing)
		content, _, err := svc.Render(ctx, cfg.CredentialsFile)
		if err != nil {
			return err
		}
		slog.Info("dry run, writing new credentials file to stdout")
		_, err = os.Stdout.WriteString(content)
		return err
	}

	// History is ancillary: an unusable store downgrades to a warning and
	// the sync proceeds without recording.
	var runStore driven.RunStore
	if db, dbErr := openHistoryDB(cfg); dbErr != nil {
		slog.Warn("history store unavailable, continuing without it", "error", dbErr)
	} else {
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing history db", "error", closeErr)
			}
		}()
		runStore = sqliteadapter.NewRunRepo(db)
	}

	svc := application.NewSyncService(fetcher, runStore, cfg.DefaultBranch, warnMissing)
	return svc.Sync(ctx, cfg.CredentialsFile)
}

// openHistoryDB creates the work directory, opens the history database, and
// applies pending migrations.
func openHistoryDB(cfg *config.Config) (*sqliteadapter.DB, error) {
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqliteadapter.NewDB(cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
