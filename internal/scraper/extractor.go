package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/nsac-scraper/internal/browser"
	"github.com/nsac-scraper/internal/config"
	"github.com/nsac-scraper/internal/model"
)

// Extractor scrapes the team count from a single challenge page.
type Extractor struct {
	headers           map[string]string
	maxAttempts       int
	retryWait         time.Duration
	navigationTimeout time.Duration
	textTimeout       time.Duration
	logger            *log.Logger
}

func NewExtractor(cfg config.ScraperConfig, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Extractor{
		headers:           cfg.Headers(),
		maxAttempts:       attempts,
		retryWait:         cfg.RetryWait,
		navigationTimeout: cfg.NavigationTimeout,
		textTimeout:       cfg.TextTimeout,
		logger:            logger.WithPrefix("extractor"),
	}
}

// Extract never fails: errors are folded into the returned result.
func (e *Extractor) Extract(ctx context.Context, b browser.Browser, url, xpath string) model.ChallengeResult {
	logger := e.logger.With("url", url)

	title, err := ChallengeTitle(url)
	if err != nil {
		logger.Error("could not scrape challenge", "err", err)
		return model.NewFailedResult(url, err)
	}

	page, err := b.NewPage(ctx, e.headers)
	if err != nil {
		logger.Error("could not scrape challenge", "err", err)
		return model.NewFailedResult(url, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("failed to close page", "err", err)
		}
	}()

	if err := e.navigate(ctx, page, url, logger); err != nil {
		logger.Error("could not scrape challenge", "attempts", e.maxAttempts, "err", err)
		return model.NewFailedResult(url, err)
	}

	textCtx, cancel := withTimeout(ctx, e.textTimeout)
	defer cancel()
	text, err := page.Text(textCtx, xpath)
	if err != nil {
		logger.Error("could not scrape challenge", "err", err)
		return model.NewFailedResult(url, err)
	}

	count := ParseTeamCount(text)
	logger.Info("scraped challenge", "challenge", title, "teams", count)
	return model.ChallengeResult{Challenge: title, TeamCount: count}
}

func (e *Extractor) navigate(ctx context.Context, page browser.Page, url string, logger *log.Logger) error {
	attempt := 0
	op := func() error {
		attempt++
		navCtx, cancel := withTimeout(ctx, e.navigationTimeout)
		defer cancel()
		return page.Navigate(navCtx, url)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.retryWait), uint64(e.maxAttempts-1)),
		ctx,
	)
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		logger.Warn("navigation failed, retrying", "attempt", attempt, "wait", wait, "err", err)
	})
	if err != nil {
		return fmt.Errorf("navigation failed after %d attempts: %w", attempt, err)
	}
	return nil
}

// withTimeout treats a non-positive d as no timeout.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
