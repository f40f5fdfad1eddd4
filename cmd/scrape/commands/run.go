package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nsac-scraper/internal/app"
	"github.com/nsac-scraper/internal/model"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrapes every target once, records the snapshot and prints it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " scraping challenge pages"
		s.Start()
		run, err := a.Runner.RunNow(cmd.Context(), "cli")
		s.Stop()
		if err != nil {
			return fmt.Errorf("scrape failed: %w", err)
		}

		snap, err := a.Backend.History.ReadLatest(cmd.Context())
		if err != nil {
			return err
		}
		printSnapshot(snap)

		fmt.Fprintf(os.Stderr, "run %s: %d challenges, %d failed, %dms\n",
			run.ID, run.ChallengeCount, run.FailedCount, derefInt64(run.Duration))
		return nil
	},
}

func printSnapshot(snap *model.Snapshot) {
	t := newTable()
	t.SetTitle(snap.Timestamp)
	t.AppendHeader(table.Row{"Challenge", "Team Count", "Error"})
	for _, c := range snap.Challenges {
		msg := ""
		if c.Error != nil {
			msg = *c.Error
		}
		t.AppendRow(table.Row{c.Challenge, c.TeamCount, msg})
	}
	t.Render()
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
