// Package browser drives a headless Chrome through either chromedp or rod behind one small interface.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/nsac-scraper/internal/config"
)

var ErrUnknownDriver = errors.New("unknown browser driver")

// Launcher starts a browser shared by every page of one scrape.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser hands out isolated pages. Close releases the browser process.
type Browser interface {
	NewPage(ctx context.Context, headers map[string]string) (Page, error)
	Close() error
}

// Page is a single tab owned by one extraction.
type Page interface {
	// Navigate loads url and returns once the network is idle.
	Navigate(ctx context.Context, url string) error
	// Text returns the visible text of the first element matching xpath.
	Text(ctx context.Context, xpath string) (string, error)
	Close() error
}

func NewLauncher(cfg config.BrowserConfig, logger *log.Logger) (Launcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("browser")

	switch cfg.Driver {
	case "", "chromedp":
		return &ChromedpLauncher{cfg: cfg, logger: logger}, nil
	case "rod":
		return &RodLauncher{cfg: cfg, logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// headerPairs flattens headers into key/value pairs ordered by key.
func headerPairs(headers map[string]string) []string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, headers[k])
	}
	return pairs
}
