package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nsac-scraper/internal/config"
	"github.com/nsac-scraper/internal/scraper"
)

func init() {
	rootCmd.AddCommand(targetsCmd)
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Lists the challenge pages that will be scraped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := config.LoadTargets(cfg.Scraper.TargetsFile)
		if err != nil {
			return err
		}

		t := newTable()
		t.SetTitle(fmt.Sprintf("XPath: %s", targets.XPath))
		t.AppendHeader(table.Row{"#", "Challenge", "URL"})
		for i, url := range targets.URLs {
			title, err := scraper.ChallengeTitle(url)
			if err != nil {
				title = "?"
			}
			t.AppendRow(table.Row{i + 1, title, url})
		}
		t.Render()
		return nil
	},
}
