package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

var (
	// ErrElementNotFound means an element did not appear within its wait.
	ErrElementNotFound = errors.New("element not found")

	// ErrConnectivityLost means the browser, context or page is gone.
	ErrConnectivityLost = errors.New("browser connection lost")

	// ErrSessionActive is returned by Create while a session is alive.
	ErrSessionActive = errors.New("a browser session is already active")
)

// CreationError wraps any failure to bring up a session.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("failed to create browser session: %v", e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// classify maps Playwright errors onto the package's error kinds.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%s: %w: %w", op, ErrElementNotFound, err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%s: %w: %w", op, ErrConnectivityLost, err)
	default:
		return fmt.Errorf("%s failed: %w", op, err)
	}
}
