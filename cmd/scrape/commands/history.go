package commands

import (
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nsac-scraper/internal/app"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints the recorded history with one column per challenge.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		history, err := a.Backend.History.ReadAll(cmd.Context())
		if err != nil {
			return err
		}

		names := history.ChallengeNames()
		sort.Strings(names)

		t := newTable()
		header := table.Row{"Timestamp"}
		for _, name := range names {
			header = append(header, name)
		}
		t.AppendHeader(header)

		for _, snap := range history {
			counts := make(map[string]int, len(snap.Challenges))
			for _, c := range snap.Challenges {
				counts[c.Challenge] = c.TeamCount
			}
			row := table.Row{snap.Timestamp}
			for _, name := range names {
				row = append(row, counts[name])
			}
			t.AppendRow(row)
		}
		t.Render()
		return nil
	},
}
