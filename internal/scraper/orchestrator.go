package scraper

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/nsac-scraper/internal/browser"
	"github.com/nsac-scraper/internal/model"
)

// PageScraper is the per-page step the orchestrator fans out to.
type PageScraper interface {
	Extract(ctx context.Context, b browser.Browser, url, xpath string) model.ChallengeResult
}

// Orchestrator scrapes a list of challenge pages against one shared browser.
type Orchestrator struct {
	launcher    browser.Launcher
	pages       PageScraper
	concurrency int
	logger      *log.Logger
}

// NewOrchestrator bounds the number of pages open at once by concurrency; zero or less means no bound.
func NewOrchestrator(launcher browser.Launcher, pages PageScraper, concurrency int, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		launcher:    launcher,
		pages:       pages,
		concurrency: concurrency,
		logger:      logger.WithPrefix("orchestrator"),
	}
}

// Run returns exactly one result per url, in the order of urls. Page failures
// are reported inside the results; only a browser that cannot start is an error.
func (o *Orchestrator) Run(ctx context.Context, urls []string, xpath string) ([]model.ChallengeResult, error) {
	results := make([]model.ChallengeResult, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	b, err := o.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			o.logger.Warn("failed to close browser", "err", err)
		}
	}()

	o.logger.Info("scraping challenges", "count", len(urls), "concurrency", o.concurrency)

	g := new(errgroup.Group)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, url := range urls {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					o.logger.Error("page scrape panicked", "url", url, "panic", p)
					results[i] = model.NewFailedResult(url, fmt.Errorf("panic: %v", p))
				}
			}()
			results[i] = o.pages.Extract(ctx, b, url, xpath)
			return nil
		})
	}
	g.Wait()

	failed := model.ChallengeResults(results).Failures()
	o.logger.Info("scrape finished", "count", len(results), "failed", failed)
	return results, nil
}
