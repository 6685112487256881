package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/viewbot/pkg/egress"
	"github.com/playwright-community/playwright-go"
)

// Session represents the live browser session with its associated resources.
type Session struct {
	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the active page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// UserAgent and Proxy record the rotation chosen at creation ("" = browser default)
	UserAgent string
	Proxy     string

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// LastUsedAt is the timestamp of the last operation on this session
	LastUsedAt time.Time

	// closers run in order on teardown
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

func (s *Session) touch() {
	s.LastUsedAt = time.Now()
}

// Navigate navigates the session's page to url.
func (s *Session) Navigate(url string) error {
	s.touch()

	waitUntil := playwright.WaitUntilState("load")
	_, err := s.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTargetClosed) {
			return fmt.Errorf("navigation failed: %w: %w", ErrConnectivityLost, err)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitForElement waits until selector is visible.
func (s *Session) WaitForElement(selector string, timeout time.Duration) error {
	s.touch()

	state := playwright.WaitForSelectorState("visible")
	err := s.Page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   &state,
		Timeout: playwright.Float(millis(timeout)),
	})
	return classify("wait for "+selector, err)
}

// Click clicks the first element matching selector.
func (s *Session) Click(selector string, timeout time.Duration) error {
	s.touch()

	err := s.Page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	return classify("click "+selector, err)
}

// Attribute reads an attribute of the first element matching selector.
func (s *Session) Attribute(selector, name string, timeout time.Duration) (string, error) {
	s.touch()

	value, err := s.Page.Locator(selector).First().GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	if err != nil {
		return "", classify("read "+name+" of "+selector, err)
	}
	return value, nil
}

// CurrentURL asks the page for its location. Unlike Page.URL, which is a
// cached value, this round-trips to the browser, so any failure means the
// session is no longer reachable.
func (s *Session) CurrentURL() (string, error) {
	s.touch()

	if s.Page.IsClosed() {
		return "", fmt.Errorf("read location: %w", ErrConnectivityLost)
	}
	v, err := s.Page.Evaluate("() => window.location.href")
	if err != nil {
		return "", fmt.Errorf("read location: %w: %w", ErrConnectivityLost, err)
	}
	href, _ := v.(string)
	return href, nil
}

// close runs every closer and returns the errors it saw. It never stops
// early.
func (s *Session) close() []error {
	var errs []error
	for _, c := range s.closers {
		if err := c.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	return errs
}

// describe summarizes the session for the teardown log. Proxy credentials
// are redacted.
func (s *Session) describe(now time.Time) string {
	ua := s.UserAgent
	if ua == "" {
		ua = "browser default"
	}
	proxy := "direct"
	if s.Proxy != "" {
		proxy = egress.Redact(s.Proxy)
	}
	return fmt.Sprintf("age %s, idle %s, user agent %q, egress %s",
		now.Sub(s.CreatedAt).Round(time.Second), now.Sub(s.LastUsedAt).Round(time.Second), ua, proxy)
}
