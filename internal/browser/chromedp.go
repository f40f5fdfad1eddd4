package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/nsac-scraper/internal/config"
)

type ChromedpLauncher struct {
	cfg    config.BrowserConfig
	logger *log.Logger
}

func (l *ChromedpLauncher) Launch(ctx context.Context) (Browser, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc

	if l.cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, l.cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU)
		if !l.cfg.Headless {
			opts = append(opts, chromedp.Flag("headless", false))
		}
		if l.cfg.NoSandbox {
			opts = append(opts, chromedp.NoSandbox)
		}
		if l.cfg.BinPath != "" {
			opts = append(opts, chromedp.ExecPath(l.cfg.BinPath))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// The first Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	l.logger.Debug("chrome started", "remote", l.cfg.RemoteURL != "")
	return &chromedpBrowser{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		logger:      l.logger,
	}, nil
}

type chromedpBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *log.Logger
}

func (b *chromedpBrowser) NewPage(ctx context.Context, headers map[string]string) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	p := &chromedpPage{ctx: tabCtx, cancel: cancel, idle: make(chan struct{}, 1)}

	runCtx, stop := p.scoped(ctx)
	defer stop()

	// Open the tab before listening so events land on the right target.
	if err := chromedp.Run(runCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	chromedp.ListenTarget(tabCtx, p.onEvent)

	extra := make(network.Headers, len(headers))
	for k, v := range headers {
		extra[k] = v
	}
	err := chromedp.Run(runCtx,
		network.Enable(),
		cdppage.SetLifecycleEventsEnabled(true),
		network.SetExtraHTTPHeaders(extra),
	)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to prepare tab: %w", err)
	}
	return p, nil
}

func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	return err
}

type chromedpPage struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	networkIdle bool
	idle        chan struct{}
}

// onEvent tracks the lifecycle of the current document. "init" starts a new
// document, so idleness seen before it belongs to the previous one.
func (p *chromedpPage) onEvent(ev interface{}) {
	e, ok := ev.(*cdppage.EventLifecycleEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch e.Name {
	case "init":
		p.networkIdle = false
	case "networkIdle":
		p.networkIdle = true
		select {
		case p.idle <- struct{}{}:
		default:
		}
	}
}

func (p *chromedpPage) isIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.networkIdle
}

// scoped derives a context from the tab that also honours ctx's deadline and cancellation.
func (p *chromedpPage) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		prev := cancel
		cancel = func() {
			cancelDeadline()
			prev()
		}
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	runCtx, stop := p.scoped(ctx)
	defer stop()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	for !p.isIdle() {
		select {
		case <-runCtx.Done():
			return fmt.Errorf("waiting for network idle on %s: %w", url, runCtx.Err())
		case <-p.idle:
		}
	}
	return nil
}

func (p *chromedpPage) Text(ctx context.Context, xpath string) (string, error) {
	runCtx, stop := p.scoped(ctx)
	defer stop()

	var text string
	if err := chromedp.Run(runCtx, chromedp.Text(xpath, &text, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", xpath, err)
	}
	return text, nil
}

func (p *chromedpPage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	return err
}
