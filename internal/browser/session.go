package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/common"
)

// Session owns one headless Chrome instance. Sessions are single-use: each
// scrape launches a fresh browser and tears it down when done, so no portal
// state leaks between operations.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      arbor.ILogger
}

// NewSession launches a Chrome instance and verifies it responds before
// returning. The returned session must be closed by the caller.
func NewSession(ctx context.Context, cfg *common.BrowserConfig, logger arbor.ILogger) (*Session, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, buildAllocatorOptions(cfg)...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	session := &Session{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		logger:      logger,
	}

	// Probe the instance with a trivial navigation so a missing or broken
	// Chrome binary surfaces here instead of mid-scrape.
	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debug().Msg("Browser session started")
	return session, nil
}

// Context returns the chromedp context actions should run against.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Run executes chromedp actions against this session's browser.
func (s *Session) Run(actions ...chromedp.Action) error {
	return chromedp.Run(s.ctx, actions...)
}

// Close tears down the browser instance and its allocator.
func (s *Session) Close() {
	if s.cancelCtx != nil {
		s.cancelCtx()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	s.logger.Debug().Msg("Browser session closed")
}

// WithSession runs fn inside a fresh browser session bounded by the
// configured navigation timeout, and always tears the session down.
func WithSession(ctx context.Context, cfg *common.BrowserConfig, logger arbor.ILogger, fn func(ctx context.Context) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, cfg.NavigationTimeout.Std())
	defer cancel()

	session, err := NewSession(timeoutCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	return fn(session.Context())
}

// buildAllocatorOptions configures Chrome for unattended scraping. The
// automation flags reduce fingerprinting by sites that block headless Chrome.
func buildAllocatorOptions(cfg *common.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	}

	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	return opts
}
