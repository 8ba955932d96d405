package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joern1811/chatstats/internal/adapter/renderer"
	"github.com/joern1811/chatstats/internal/adapter/store"
)

var (
	historyLimit int
	historyRun   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored analysis runs or show one of them",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the stored tables of this run ID")
	historyCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format for --run")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return errors.New("no store configured (set store.path or --store)")
	}

	db, err := store.OpenDB(cfg.Store.Path, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if historyRun != "" {
		report, err := db.LoadReport(ctx, historyRun)
		if err != nil {
			return err
		}
		rend, err := renderer.New(format)
		if err != nil {
			return err
		}
		return rend.Render(out, report)
	}

	runs, err := db.Runs(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %s -> %s  %d messages  %s\n",
			r.RunID, r.CreatedAt.Local().Format(time.DateTime), r.Sender, r.Recipient, r.Messages, r.Source)
	}
	return nil
}
