package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ChallengeResult is the outcome of scraping one challenge page.
// Failed extractions keep the raw URL as Challenge and carry Error.
type ChallengeResult struct {
	Challenge string  `json:"challenge"`
	TeamCount int     `json:"team_count"`
	Error     *string `json:"error,omitempty"`
}

// NewFailedResult builds the placeholder recorded for a page that could not be scraped.
func NewFailedResult(url string, err error) ChallengeResult {
	msg := err.Error()
	return ChallengeResult{
		Challenge: url,
		TeamCount: 0,
		Error:     &msg,
	}
}

func (r ChallengeResult) Failed() bool {
	return r.Error != nil
}

type ChallengeResults []ChallengeResult

// Failures counts the results that carry an error.
func (c ChallengeResults) Failures() int {
	n := 0
	for _, r := range c {
		if r.Failed() {
			n++
		}
	}
	return n
}

func (c ChallengeResults) Value() (driver.Value, error) {
	if c == nil {
		c = ChallengeResults{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *ChallengeResults) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = ChallengeResults{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type for challenge results: %T", value)
	}
}

// Snapshot is one completed scrape: every challenge result plus the time it was taken.
type Snapshot struct {
	Timestamp  string           `json:"timestamp" db:"taken_at"`
	Challenges ChallengeResults `json:"challenges" db:"challenges"`
}

// TimestampFormat is the layout snapshot timestamps are written in (always UTC).
const TimestampFormat = time.RFC3339Nano

func NewSnapshot(at time.Time, results []ChallengeResult) Snapshot {
	challenges := make(ChallengeResults, len(results))
	copy(challenges, results)
	return Snapshot{
		Timestamp:  at.UTC().Format(TimestampFormat),
		Challenges: challenges,
	}
}

// HistoryLog is the append-only, chronological sequence of snapshots.
type HistoryLog []Snapshot

// ChallengeNames returns every distinct challenge title in the log, in first-seen order.
func (h HistoryLog) ChallengeNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, snap := range h {
		for _, c := range snap.Challenges {
			if _, ok := seen[c.Challenge]; ok {
				continue
			}
			seen[c.Challenge] = struct{}{}
			names = append(names, c.Challenge)
		}
	}
	return names
}
