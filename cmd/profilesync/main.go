// Command profilesync synchronizes managed blocks of an AWS-style
// credentials file from remote version-controlled profile sources, driven by
// #!profile-sync directive comments embedded in the file.
//
// Concurrent invocations against the same credentials file are not safe;
// callers that automate profilesync must serialize runs themselves.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "profilesync",
		Short: "Synchronize shared AWS profile definitions into a credentials file",
		Long: `profilesync scans a credentials file for #!profile-sync directive comments,
fetches the referenced profile definitions from their remote sources, applies
the directive's key overrides, and rewrites the managed blocks in place.
Everything outside a managed block is preserved byte for byte, and the
previous file version is saved to a .backup sibling before each update.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newSyncCmd())
	root.AddCommand(newHistoryCmd())
	return root
}
