package browser

import (
	"fmt"

	"github.com/entrhq/viewbot/pkg/egress"
	"github.com/playwright-community/playwright-go"
)

// Chromium flags applied to every launch.
var baseArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-blink-features=AutomationControlled",
}

// Default switches Playwright passes that announce automation.
var ignoredDefaultArgs = []string{"--enable-automation"}

// LaunchConfig describes how a session is launched. It holds no live
// resources.
type LaunchConfig struct {
	Headless          bool
	Args              []string
	IgnoreDefaultArgs []string
	Viewport          Viewport
	BlockImages       bool
	UserAgent         string
	Proxy             *egress.Endpoint
	NavigationTimeout float64 // milliseconds
}

// BuildLaunchConfig combines the factory options with the identity and
// egress chosen for this run. Empty identity or endpoint leaves the browser
// defaults in place.
func BuildLaunchConfig(opts Options, identity, endpoint string) (LaunchConfig, error) {
	opts = opts.withDefaults()

	args := make([]string, 0, len(baseArgs)+2)
	args = append(args, fmt.Sprintf("--window-size=%d,%d", opts.Viewport.Width, opts.Viewport.Height))
	args = append(args, baseArgs...)

	cfg := LaunchConfig{
		Headless:          opts.Headless,
		Args:              args,
		IgnoreDefaultArgs: append([]string(nil), ignoredDefaultArgs...),
		Viewport:          opts.Viewport,
		BlockImages:       opts.DisableImages,
		UserAgent:         identity,
		NavigationTimeout: millis(opts.NavigationTimeout),
	}

	if endpoint != "" {
		ep, err := egress.ParseEndpoint(endpoint)
		if err != nil {
			return LaunchConfig{}, err
		}
		cfg.Proxy = &ep
	}

	return cfg, nil
}

func (c LaunchConfig) launchOptions() playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless:          playwright.Bool(c.Headless),
		Args:              c.Args,
		IgnoreDefaultArgs: c.IgnoreDefaultArgs,
	}
	if c.Proxy != nil {
		proxy := &playwright.Proxy{Server: c.Proxy.Server}
		if c.Proxy.Username != "" {
			proxy.Username = playwright.String(c.Proxy.Username)
			proxy.Password = playwright.String(c.Proxy.Password)
		}
		opts.Proxy = proxy
	}
	return opts
}

func (c LaunchConfig) contextOptions() playwright.BrowserNewContextOptions {
	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  c.Viewport.Width,
			Height: c.Viewport.Height,
		},
	}
	if c.UserAgent != "" {
		opts.UserAgent = playwright.String(c.UserAgent)
	}
	return opts
}

// blockImages aborts image requests and lets everything else through.
func blockImages(route playwright.Route) {
	if route.Request().ResourceType() == "image" {
		_ = route.Abort()
		return
	}
	_ = route.Continue()
}
