// Package browser owns the single browser session a run watches videos
// through, built on Playwright.
//
// # Architecture
//
// The package is built around three pieces:
//
// 1. LaunchConfig: a pure description of how Chromium is started (flags,
// viewport, identity, egress), built by BuildLaunchConfig
// 2. Factory: installs and starts the Playwright driver, creates at most one
// Session at a time and tears it down
// 3. Page: the narrow capability the viewer drives (navigate, wait for an
// element, click, read an attribute, read the current location)
//
// # Session Lifecycle
//
//  1. Preflight: the driver is started and a throwaway headless browser is
//     launched and closed to prove the whole launch path works
//  2. Create: one session is launched with the rotated identity and egress
//  3. Use: the viewer navigates and interacts through Page
//  4. Destroy: best-effort teardown, always clears the handle
//  5. Shutdown: the driver is stopped
//
// # Errors
//
// Playwright timeouts surface as ErrElementNotFound and a closed target as
// ErrConnectivityLost, so callers can treat a missing element as a non-event
// and a dead browser as a failed attempt. Creation failures are wrapped in
// *CreationError.
//
// # Example Usage
//
//	factory := browser.NewFactory(opts, logger)
//	if err := factory.Preflight(); err != nil {
//	    return err
//	}
//	page, err := factory.Create(userAgent, proxy)
//	if err != nil {
//	    return err
//	}
//	defer factory.Shutdown()
//	defer factory.Destroy()
//
//	err = page.Navigate("https://www.youtube.com/watch?v=...")
package browser
