package scraper

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/nsac-scraper/internal/browser"
	"github.com/nsac-scraper/internal/model"
)

var discardLogger = log.New(io.Discard)

// fakePage scripts navigation failures and the text the locator returns.
type fakePage struct {
	navErrs  []error // one entry per attempt, nil means success
	text     string
	textErr  error
	navCalls int
	closed   bool
	headers  map[string]string
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navCalls++
	if p.navCalls <= len(p.navErrs) {
		return p.navErrs[p.navCalls-1]
	}
	return nil
}

func (p *fakePage) Text(ctx context.Context, xpath string) (string, error) {
	if p.textErr != nil {
		return "", p.textErr
	}
	return p.text, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// fakeBrowser hands out its one scripted page.
type fakeBrowser struct {
	page    *fakePage
	pageErr error
	opened  int
	closed  bool
}

func (b *fakeBrowser) NewPage(ctx context.Context, headers map[string]string) (browser.Page, error) {
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	b.opened++
	if b.page == nil {
		b.page = &fakePage{}
	}
	b.page.headers = headers
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

type fakeLauncher struct {
	browser  *fakeBrowser
	err      error
	launches int
}

func (l *fakeLauncher) Launch(ctx context.Context) (browser.Browser, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.browser, nil
}

// scriptedScraper fails the urls fn rejects and records the peak number of concurrent calls.
type scriptedScraper struct {
	fn      func(url string) error
	active  atomic.Int32
	peak    atomic.Int32
	release chan struct{}
}

func (s *scriptedScraper) Extract(ctx context.Context, b browser.Browser, url, xpath string) model.ChallengeResult {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.release != nil {
		<-s.release
	}
	if s.fn != nil {
		if err := s.fn(url); err != nil {
			return model.NewFailedResult(url, err)
		}
	}
	title, _ := ChallengeTitle(url)
	return model.ChallengeResult{Challenge: title, TeamCount: len(url)}
}

var errBoom = errors.New("boom")
