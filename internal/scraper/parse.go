package scraper

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	digitsPattern = regexp.MustCompile(`[0-9]+`)

	ErrNoChallengeSlug = errors.New("url has no challenge segment")
)

// ParseTeamCount returns the first run of digits in text, or 0 when there is none.
func ParseTeamCount(text string) int {
	match := digitsPattern.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// ChallengeTitle turns ".../challenges/meteor-madness/?tab=teams" into "Meteor Madness".
// The slug is the second-to-last "/" segment of the URL.
func ChallengeTitle(url string) (string, error) {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return "", ErrNoChallengeSlug
	}
	slug := strings.ReplaceAll(parts[len(parts)-2], "-", " ")

	words := strings.Split(slug, " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " "), nil
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}
