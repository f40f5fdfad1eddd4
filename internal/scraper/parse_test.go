package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeamCount(t *testing.T) {
	cases := map[string]int{
		"Currently returning 123 teams": 123,
		"No teams":                      0,
		"":                              0,
		"12 of 40 teams":                12,
		"teams: 0007":                   7,
		"99999999999999999999999999999": 0,
	}
	for text, want := range cases {
		assert.Equal(t, want, ParseTeamCount(text), "text %q", text)
	}
}

func TestChallengeTitle(t *testing.T) {
	cases := map[string]string{
		"https://x/2025/challenges/my-cool-challenge/?tab=teams":                               "My Cool Challenge",
		"https://www.spaceappschallenge.org/2025/challenges/commercializing-low-earth-orbit-leo/": "Commercializing Low Earth Orbit Leo",
		"https://x/challenges/international-space-station-25th-anniversary-apps/?tab=teams":     "International Space Station 25th Anniversary Apps",
		"https://x/challenges/SHARKS-from-SPACE/?tab=teams":                                     "Sharks From Space",
		"a/b": "A",
	}
	for url, want := range cases {
		got, err := ChallengeTitle(url)
		require.NoError(t, err, url)
		assert.Equal(t, want, got, url)
	}
}

func TestChallengeTitle_NoSegment(t *testing.T) {
	_, err := ChallengeTitle("meteor-madness")
	assert.ErrorIs(t, err, ErrNoChallengeSlug)
}
