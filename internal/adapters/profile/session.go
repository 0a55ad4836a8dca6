package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Session is one browser tab driven by the source. A session is bound to the context it was
// launched with and must be closed by the caller.
type Session interface {
	// Navigate loads url and waits until readySelector matches.
	Navigate(url, readySelector string) error
	// Fill types value into the element matched by selector.
	Fill(selector, value string) error
	// Click clicks selector and waits until readySelector matches.
	Click(selector, readySelector string) error
	// Scroll scrolls to the bottom of the page rounds times, pausing after each.
	Scroll(rounds int, pause time.Duration) error
	// HTML returns the current document.
	HTML() (string, error)
	Close() error
}

// Launcher opens a new Session.
type Launcher func(ctx context.Context) (Session, error)

// ChromeConfig configures the chromedp launcher.
type ChromeConfig struct {
	// RemoteURL is a DevTools websocket URL. Empty starts a local headless Chrome.
	RemoteURL   string
	UserAgent   string
	WaitTimeout time.Duration
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// NewChromeLauncher returns a Launcher backed by chromedp.
func NewChromeLauncher(cfg ChromeConfig) Launcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 10 * time.Second
	}
	return func(ctx context.Context) (Session, error) {
		var allocCtx context.Context
		var cancelAlloc context.CancelFunc
		if cfg.RemoteURL != "" {
			allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
		} else {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.NoSandbox,
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.Flag("disable-blink-features", "AutomationControlled"),
				chromedp.UserAgent(cfg.UserAgent),
			)
			allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
		}
		tabCtx, cancelTab := chromedp.NewContext(allocCtx)
		// Starts the browser so launch failures surface here instead of on first use.
		if err := chromedp.Run(tabCtx); err != nil {
			cancelTab()
			cancelAlloc()
			return nil, fmt.Errorf("start browser: %w", err)
		}
		return &chromeSession{
			ctx:         tabCtx,
			cancelTab:   cancelTab,
			cancelAlloc: cancelAlloc,
			waitTimeout: cfg.WaitTimeout,
		}, nil
	}
}

type chromeSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	waitTimeout time.Duration
}

// wait runs actions followed by a bounded wait for readySelector.
func (s *chromeSession) wait(readySelector string, actions ...chromedp.Action) error {
	if err := chromedp.Run(s.ctx, actions...); err != nil {
		return err
	}
	if readySelector == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.waitTimeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitReady(readySelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", readySelector, err)
	}
	return nil
}

func (s *chromeSession) Navigate(url, readySelector string) error {
	return s.wait(readySelector, chromedp.Navigate(url))
}

func (s *chromeSession) Fill(selector, value string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.waitTimeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

func (s *chromeSession) Click(selector, readySelector string) error {
	return s.wait(readySelector, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *chromeSession) Scroll(rounds int, pause time.Duration) error {
	actions := make([]chromedp.Action, 0, rounds*2)
	for range rounds {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(pause),
		)
	}
	return chromedp.Run(s.ctx, actions...)
}

func (s *chromeSession) HTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc()
	return err
}
