package browser

import (
	"time"

	"github.com/entrhq/viewbot/pkg/config"
)

// Page is the browser capability the viewer drives. Implementations report
// ErrElementNotFound when an element does not show up in time and
// ErrConnectivityLost when the browser is gone.
type Page interface {
	// Navigate loads url and waits for the load to finish
	Navigate(url string) error

	// WaitForElement waits until selector is visible
	WaitForElement(selector string, timeout time.Duration) error

	// Click clicks the first element matching selector
	Click(selector string, timeout time.Duration) error

	// Attribute reads an attribute of the first element matching selector
	Attribute(selector, name string, timeout time.Duration) (string, error)

	// CurrentURL reads the live location from the page; used as a liveness probe
	CurrentURL() (string, error)
}

// Options configures every session the factory launches.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the window and viewport size
	Viewport Viewport

	// DisableImages aborts image requests
	DisableImages bool

	// NavigationTimeout bounds page loads
	NavigationTimeout time.Duration

	// SkipInstall skips downloading the driver and browser on Initialize
	SkipInstall bool
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for launches and waits
const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultViewportWidth     = 1920
	DefaultViewportHeight    = 1080
)

// OptionsFromSettings converts the configured browser section.
func OptionsFromSettings(s config.BrowserSettings) (Options, error) {
	w, h, err := config.ParseWindowSize(s.WindowSize)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Headless:          s.Headless,
		Viewport:          Viewport{Width: w, Height: h},
		DisableImages:     s.DisableImages,
		NavigationTimeout: DefaultNavigationTimeout,
	}, nil
}

func (o Options) withDefaults() Options {
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	return o
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
