package api

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/nsac-scraper/internal/model"
)

const (
	formatWide = "wide"
	formatLong = "long"
)

// writeWideCSV writes one row per snapshot and one column per challenge title
// (sorted). Challenges missing from a snapshot are written as 0.
func writeWideCSV(w io.Writer, history model.HistoryLog) error {
	names := history.ChallengeNames()
	sort.Strings(names)

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Timestamp"}, names...)); err != nil {
		return err
	}

	for _, snap := range history {
		counts := make(map[string]int, len(snap.Challenges))
		for _, c := range snap.Challenges {
			counts[c.Challenge] = c.TeamCount
		}

		row := make([]string, 0, len(names)+1)
		row = append(row, snap.Timestamp)
		for _, name := range names {
			row = append(row, strconv.Itoa(counts[name]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// writeLongCSV writes one row per (timestamp, challenge, team count).
func writeLongCSV(w io.Writer, history model.HistoryLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Timestamp", "Challenge", "Team Count"}); err != nil {
		return err
	}

	for _, snap := range history {
		for _, c := range snap.Challenges {
			if err := cw.Write([]string{snap.Timestamp, c.Challenge, strconv.Itoa(c.TeamCount)}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
