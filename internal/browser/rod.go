package browser

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/nsac-scraper/internal/config"
)

type RodLauncher struct {
	cfg    config.BrowserConfig
	logger *log.Logger
}

func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	if l.cfg.RemoteURL != "" {
		return l.connectRemote(ctx)
	}

	lnch := launcher.New().
		Context(ctx).
		Headless(l.cfg.Headless).
		NoSandbox(l.cfg.NoSandbox)
	if l.cfg.BinPath != "" {
		lnch = lnch.Bin(l.cfg.BinPath)
	}

	controlURL, err := lnch.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		lnch.Kill()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	l.logger.Debug("chrome launched", "control_url", controlURL)
	return &rodBrowser{browser: b, launcher: lnch, stealth: l.cfg.Stealth}, nil
}

// connectRemote attaches to a Chrome this process does not own. Closing the
// returned browser drops the connection and leaves Chrome running.
func (l *RodLauncher) connectRemote(ctx context.Context) (Browser, error) {
	wsURL, err := launcher.ResolveURL(l.cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", l.cfg.RemoteURL, err)
	}

	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, wsURL, nil); err != nil {
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	b := rod.New().Client(cdp.New().Start(ws))
	if err := b.Connect(); err != nil {
		ws.Close()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	l.logger.Debug("chrome connected", "control_url", wsURL)
	return &rodBrowser{browser: b, conn: ws, stealth: l.cfg.Stealth}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	conn     io.Closer
	stealth  bool
}

func (b *rodBrowser) NewPage(ctx context.Context, headers map[string]string) (Page, error) {
	var page *rod.Page
	var err error
	if b.stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if len(headers) > 0 {
		if _, err := page.Context(ctx).SetExtraHeaders(headerPairs(headers)); err != nil {
			page.Close()
			return nil, fmt.Errorf("failed to set headers: %w", err)
		}
	}
	return &rodPage{page: page}, nil
}

func (b *rodBrowser) Close() error {
	if b.launcher == nil {
		return b.conn.Close()
	}
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("waiting for network idle on %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) Text(ctx context.Context, xpath string) (string, error) {
	el, err := p.page.Context(ctx).ElementX(xpath)
	if err != nil {
		return "", fmt.Errorf("failed to find %s: %w", xpath, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", xpath, err)
	}
	return text, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
