package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/profilesync/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/profilesync/internal/config"
)

func newHistoryCmd() *cobra.Command {
	var (
		credentialsFile string
		limit           int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent synchronization runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, credentialsFile, limit)
		},
	}

	cmd.Flags().StringVarP(&credentialsFile, "credentials-file", "c", "", "credentials file whose history to show (default ~/.aws/credentials)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return cmd
}

func runHistory(cmd *cobra.Command, credentialsFile string, limit int) error {
	cfg, err := config.Load(credentialsFile)
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	runs, err := sqliteadapter.NewRunRepo(db).List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tSTATUS\tTARGET\tDIRECTIVES\tERROR")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			run.TargetFile,
			run.Directives,
			run.Error,
		)
		for _, src := range run.Sources {
			fmt.Fprintf(w, "\t\t%s (%s) %s\t\t\n", src.Locator, src.Branch, src.Filename)
		}
	}
	return w.Flush()
}
