package browser

import (
	"fmt"
	"io"
	"time"

	"github.com/entrhq/viewbot/pkg/egress"
	"github.com/entrhq/viewbot/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// Factory launches and owns the run's browser session. At most one session
// is alive at a time.
type Factory struct {
	opts        Options
	logger      *logging.Logger
	playwright  *playwright.Playwright
	session     *Session
	initialized bool
}

// NewFactory creates a factory. Nothing is started until Initialize,
// Preflight or Create.
func NewFactory(opts Options, logger *logging.Logger) *Factory {
	return &Factory{
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Initialize installs (unless skipped) and starts the Playwright driver with
// Chromium. Calling it again is a no-op.
func (f *Factory) Initialize() error {
	if f.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if !f.opts.SkipInstall {
		f.logger.Infof("Ensuring Playwright driver and Chromium are installed...")
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	f.playwright = pw
	f.initialized = true
	return nil
}

// Preflight proves the launch path works before any real session is
// created: it starts the driver, launches a headless browser with the base
// launch configuration and closes it again.
func (f *Factory) Preflight() error {
	f.logger.Infof("Checking browser capability...")

	if err := f.Initialize(); err != nil {
		f.logger.Errorf("✗ Playwright driver unavailable: %v", err)
		return err
	}

	dry := f.opts
	dry.Headless = true
	cfg, err := BuildLaunchConfig(dry, "", "")
	if err != nil {
		return err
	}

	b, err := f.playwright.Chromium.Launch(cfg.launchOptions())
	if err != nil {
		f.logger.Errorf("✗ Chromium failed to launch: %v", err)
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	version := b.Version()
	if err := b.Close(); err != nil {
		f.logger.Warnf("Dry-run browser did not close cleanly: %v", err)
	}

	f.logger.Infof("✓ Chromium %s is available", version)
	return nil
}

// Create launches the session. identity and endpoint are optional; empty
// values keep the browser's own user agent and direct egress.
func (f *Factory) Create(identity, endpoint string) (Page, error) {
	if f.Active() {
		return nil, &CreationError{Err: ErrSessionActive}
	}

	f.logger.Infof("Creating browser session...")

	cfg, err := BuildLaunchConfig(f.opts, identity, endpoint)
	if err != nil {
		return nil, &CreationError{Err: err}
	}

	if err := f.Initialize(); err != nil {
		return nil, &CreationError{Err: err}
	}

	if cfg.Headless {
		f.logger.Infof("Running in headless mode")
	}
	if identity != "" {
		f.logger.Infof("Using custom user agent")
	}
	if cfg.Proxy != nil {
		f.logger.Infof("Using proxy: %s", egress.Redact(endpoint))
	}

	session, err := f.launch(cfg)
	if err != nil {
		return nil, &CreationError{Err: err}
	}
	session.UserAgent = identity
	session.Proxy = endpoint

	f.session = session
	f.logger.Infof("Browser session created successfully")
	return session, nil
}

func (f *Factory) launch(cfg LaunchConfig) (*Session, error) {
	b, err := f.playwright.Chromium.Launch(cfg.launchOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := b.NewContext(cfg.contextOptions())
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	if cfg.BlockImages {
		if err := bctx.Route("**/*", blockImages); err != nil {
			_ = bctx.Close()
			_ = b.Close()
			return nil, fmt.Errorf("failed to install image blocking: %w", err)
		}
		f.logger.Infof("Image loading disabled")
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultNavigationTimeout(cfg.NavigationTimeout)

	now := time.Now()
	return &Session{
		Browser:    b,
		Context:    bctx,
		Page:       page,
		Headless:   cfg.Headless,
		CreatedAt:  now,
		LastUsedAt: now,
		closers: []namedCloser{
			{name: "page", close: func() error { return page.Close() }},
			{name: "context", close: func() error { return bctx.Close() }},
			{name: "browser", close: func() error { return b.Close() }},
		},
	}, nil
}

// Destroy tears the session down. Errors are logged, never returned, and the
// handle is always cleared, so calling it again is a no-op.
func (f *Factory) Destroy() {
	if !f.Active() {
		return
	}

	session := f.session
	f.session = nil

	f.logger.Infof("Closing browser session: %s", session.describe(time.Now()))

	errs := session.close()
	for _, err := range errs {
		f.logger.Errorf("Error closing browser session: %v", err)
	}
	if len(errs) == 0 {
		f.logger.Infof("Browser session closed successfully")
	}
}

// Active reports whether a session is alive.
func (f *Factory) Active() bool {
	return f.session != nil
}

// Shutdown destroys any session and stops the Playwright driver.
func (f *Factory) Shutdown() error {
	f.Destroy()

	if f.initialized && f.playwright != nil {
		f.initialized = false
		if err := f.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return nil
}
