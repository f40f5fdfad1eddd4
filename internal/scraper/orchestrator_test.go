package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsac-scraper/internal/browser"
	"github.com/nsac-scraper/internal/model"
)

func challengeURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://x/2025/challenges/challenge-%d/?tab=teams", i)
	}
	return urls
}

func TestOrchestrator_OneResultPerURLInOrder(t *testing.T) {
	launcher := &fakeLauncher{browser: &fakeBrowser{}}
	pages := &scriptedScraper{fn: func(url string) error {
		if strings.Contains(url, "challenge-3") || strings.Contains(url, "challenge-5") {
			return errBoom
		}
		return nil
	}}
	urls := challengeURLs(8)

	results, err := NewOrchestrator(launcher, pages, 3, discardLogger).Run(context.Background(), urls, "//p")
	require.NoError(t, err)

	require.Len(t, results, len(urls))
	for i, res := range results {
		if i == 3 || i == 5 {
			assert.Equal(t, urls[i], res.Challenge)
			assert.NotNil(t, res.Error)
			continue
		}
		assert.Equal(t, fmt.Sprintf("Challenge %d", i), res.Challenge)
		assert.Nil(t, res.Error)
	}
	assert.Equal(t, 1, launcher.launches)
	assert.True(t, launcher.browser.closed)
}

func TestOrchestrator_AllFail(t *testing.T) {
	launcher := &fakeLauncher{browser: &fakeBrowser{}}
	pages := &scriptedScraper{fn: func(string) error { return errBoom }}

	results, err := NewOrchestrator(launcher, pages, 0, discardLogger).Run(context.Background(), challengeURLs(5), "//p")
	require.NoError(t, err)
	assert.Len(t, results, 5)
	for _, res := range results {
		assert.Equal(t, 0, res.TeamCount)
		assert.NotNil(t, res.Error)
	}
}

func TestOrchestrator_RespectsConcurrencyLimit(t *testing.T) {
	launcher := &fakeLauncher{browser: &fakeBrowser{}}
	pages := &scriptedScraper{release: make(chan struct{})}
	urls := challengeURLs(10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := NewOrchestrator(launcher, pages, 2, discardLogger).Run(context.Background(), urls, "//p")
		assert.NoError(t, err)
	}()

	for range urls {
		pages.release <- struct{}{}
	}
	<-done

	assert.LessOrEqual(t, pages.peak.Load(), int32(2))
	assert.GreaterOrEqual(t, pages.peak.Load(), int32(1))
}

func TestOrchestrator_EmptyURLsSkipsBrowser(t *testing.T) {
	launcher := &fakeLauncher{browser: &fakeBrowser{}}

	results, err := NewOrchestrator(launcher, &scriptedScraper{}, 2, discardLogger).Run(context.Background(), nil, "//p")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, launcher.launches)
}

func TestOrchestrator_LaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("chrome not found")}

	_, err := NewOrchestrator(launcher, &scriptedScraper{}, 2, discardLogger).Run(context.Background(), challengeURLs(2), "//p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestOrchestrator_WithExtractor(t *testing.T) {
	b := &fakeBrowser{page: &fakePage{text: "Currently returning 42 teams"}}
	launcher := &fakeLauncher{browser: b}

	results, err := NewOrchestrator(launcher, testExtractor(), 1, discardLogger).
		Run(context.Background(), []string{testURL}, "//p")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Meteor Madness", results[0].Challenge)
	assert.Equal(t, 42, results[0].TeamCount)
	assert.True(t, b.page.closed)
	assert.True(t, b.closed)
}

type panickingScraper struct{ target string }

func (s *panickingScraper) Extract(ctx context.Context, b browser.Browser, url, xpath string) model.ChallengeResult {
	if url == s.target {
		panic("cdp: unexpected nil node")
	}
	return model.ChallengeResult{Challenge: url, TeamCount: 7}
}

func TestOrchestrator_PagePanicBecomesFailedResult(t *testing.T) {
	launcher := &fakeLauncher{browser: &fakeBrowser{}}
	urls := challengeURLs(4)
	pages := &panickingScraper{target: urls[2]}

	results, err := NewOrchestrator(launcher, pages, 2, discardLogger).Run(context.Background(), urls, "//p")
	require.NoError(t, err)
	require.Len(t, results, len(urls))

	assert.Equal(t, urls[2], results[2].Challenge)
	assert.Equal(t, 0, results[2].TeamCount)
	require.NotNil(t, results[2].Error)
	assert.Contains(t, *results[2].Error, "unexpected nil node")

	for _, i := range []int{0, 1, 3} {
		assert.Equal(t, 7, results[i].TeamCount)
		assert.Nil(t, results[i].Error)
	}
	assert.True(t, launcher.browser.closed)
}
