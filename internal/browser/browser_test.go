package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsac-scraper/internal/config"
)

func TestNewLauncher_SelectsDriver(t *testing.T) {
	l, err := NewLauncher(config.BrowserConfig{Driver: "chromedp"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChromedpLauncher{}, l)

	l, err = NewLauncher(config.BrowserConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChromedpLauncher{}, l)

	l, err = NewLauncher(config.BrowserConfig{Driver: "rod", Stealth: true}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RodLauncher{}, l)
}

func TestNewLauncher_UnknownDriver(t *testing.T) {
	_, err := NewLauncher(config.BrowserConfig{Driver: "playwright"}, nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestHeaderPairs_SortedByKey(t *testing.T) {
	pairs := headerPairs(map[string]string{
		"User-Agent":      "ua",
		"Accept":          "text/html",
		"Accept-Language": "en-US",
	})

	assert.Equal(t, []string{
		"Accept", "text/html",
		"Accept-Language", "en-US",
		"User-Agent", "ua",
	}, pairs)
}

type closeRecorder struct{ closed int }

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestRodBrowser_CloseRemoteOnlyDisconnects(t *testing.T) {
	conn := &closeRecorder{}
	b := &rodBrowser{conn: conn}

	require.NoError(t, b.Close())
	assert.Equal(t, 1, conn.closed)
}
