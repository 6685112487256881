// Package viewer drives one video page through a viewing: load it, get past
// the consent dialog, make sure playback runs and hold the page open for the
// watch duration while checking the browser is still there.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/entrhq/viewbot/pkg/browser"
	"github.com/entrhq/viewbot/pkg/config"
	"github.com/entrhq/viewbot/pkg/logging"
)

// Waits used while driving the page
const (
	PlayerTimeout  = 20 * time.Second
	ConsentTimeout = 5 * time.Second
	ProbeInterval  = 10 * time.Second

	consentPause  = 2 * time.Second
	autoplayPause = 3 * time.Second
	playPause     = 2 * time.Second
)

const (
	playerSelector     = "#movie_player"
	playButtonSelector = ".ytp-play-button"
)

// consentSelectors are tried in order; the first visible one is clicked.
var consentSelectors = []string{
	"xpath=//button[@aria-label='Accept all']",
	"xpath=//button[contains(text(), 'Accept all')]",
	"xpath=//button[contains(text(), 'Agree')]",
	"xpath=//ytd-button-renderer[@id='accept-button']",
}

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Routine watches videos. It is not safe for concurrent use.
type Routine struct {
	minWatch, maxWatch time.Duration
	minDelay, maxDelay time.Duration

	rng    *rand.Rand
	sleep  SleepFunc
	logger *logging.Logger
}

// Option configures a Routine.
type Option func(*Routine)

// WithSleep replaces the sleep used for every pause and wait.
func WithSleep(fn SleepFunc) Option {
	return func(r *Routine) {
		r.sleep = fn
	}
}

// New creates a routine using the watch-time and inter-video delay bounds of
// settings.
func New(settings *config.Settings, rng *rand.Rand, logger *logging.Logger, opts ...Option) *Routine {
	r := &Routine{
		rng:    rng,
		sleep:  Sleep,
		logger: logger,
	}
	r.minWatch, r.maxWatch = settings.WatchTimeRange()
	r.minDelay, r.maxDelay = settings.DelayRange()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Watch watches url for a random whole number of seconds between the
// configured minimum and maximum watch time.
func (r *Routine) Watch(ctx context.Context, page browser.Page, url string) bool {
	return r.WatchFor(ctx, page, url, r.watchDuration())
}

// WatchFor watches url for d. It reports whether the whole duration elapsed
// with the browser still reachable. It never panics and never returns an
// error: every failure is logged and reported as false.
func (r *Routine) WatchFor(ctx context.Context, page browser.Page, url string, d time.Duration) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorf("Unexpected error while watching video: %v", rec)
			ok = false
		}
	}()

	if err := r.watch(ctx, page, url, d); err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			r.logger.Warnf("Watching interrupted: %v", err)
		case errors.Is(err, browser.ErrConnectivityLost):
			r.logger.Errorf("Browser connection lost: %v", err)
		default:
			r.logger.Errorf("Browser error while watching video: %v", err)
		}
		return false
	}

	r.logger.Infof("Successfully watched video: %s", url)
	return true
}

func (r *Routine) watch(ctx context.Context, page browser.Page, url string, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Infof("Navigating to: %s", url)
	if err := page.Navigate(url); err != nil {
		return err
	}

	if err := page.WaitForElement(playerSelector, PlayerTimeout); err != nil {
		r.logger.Warnf("Video player not found, continuing anyway")
	} else {
		r.logger.Infof("Video player loaded")
	}

	if err := r.dismissConsent(ctx, page); err != nil {
		return err
	}
	if err := r.ensurePlaying(ctx, page); err != nil {
		return err
	}

	r.logger.Infof("Watching video for %d seconds...", int(d.Seconds()))
	return r.hold(ctx, page, d)
}

// dismissConsent clicks the first consent button that shows up. Only a
// cancelled context is returned; anything the page reports is logged.
func (r *Routine) dismissConsent(ctx context.Context, page browser.Page) error {
	for _, sel := range consentSelectors {
		if err := page.WaitForElement(sel, ConsentTimeout); err != nil {
			if errors.Is(err, browser.ErrElementNotFound) {
				continue
			}
			r.logger.Debugf("No consent dialog found or error handling it: %v", err)
			return nil
		}

		if err := page.Click(sel, ConsentTimeout); err != nil {
			r.logger.Debugf("No consent dialog found or error handling it: %v", err)
			return nil
		}
		r.logger.Infof("Accepted consent dialog")
		return r.sleep(ctx, consentPause)
	}

	r.logger.Debugf("No consent dialog found")
	return nil
}

// ensurePlaying gives autoplay a moment and presses play if the player is
// still paused.
func (r *Routine) ensurePlaying(ctx context.Context, page browser.Page) error {
	if err := r.sleep(ctx, autoplayPause); err != nil {
		return err
	}

	label, err := page.Attribute(playButtonSelector, "aria-label", ConsentTimeout)
	if err != nil {
		r.logger.Debugf("Video auto-playing or play button not found: %v", err)
		return nil
	}
	if !strings.Contains(label, "Play") {
		return nil
	}

	if err := page.Click(playButtonSelector, ConsentTimeout); err != nil {
		r.logger.Debugf("Video auto-playing or play button not found: %v", err)
		return nil
	}
	r.logger.Infof("Clicked play button")
	return r.sleep(ctx, playPause)
}

// hold waits out d in ProbeInterval slices and checks the page after each.
func (r *Routine) hold(ctx context.Context, page browser.Page, d time.Duration) error {
	for elapsed := time.Duration(0); elapsed < d; {
		slice := min(ProbeInterval, d-elapsed)
		if err := r.sleep(ctx, slice); err != nil {
			return err
		}
		elapsed += slice

		if _, err := page.CurrentURL(); err != nil {
			if !errors.Is(err, browser.ErrConnectivityLost) {
				err = fmt.Errorf("%w: %w", browser.ErrConnectivityLost, err)
			}
			return err
		}
		r.logger.Debugf("Watched %ds of %ds", int(elapsed.Seconds()), int(d.Seconds()))
	}
	return nil
}

func (r *Routine) watchDuration() time.Duration {
	lo, hi := int(r.minWatch/time.Second), int(r.maxWatch/time.Second)
	if hi < lo {
		hi = lo
	}
	return time.Duration(lo+r.rng.IntN(hi-lo+1)) * time.Second
}

// DelayBetweenVideos pauses for a uniformly random duration between the
// configured inter-video bounds. It returns early if ctx is cancelled.
func (r *Routine) DelayBetweenVideos(ctx context.Context) {
	lo, hi := r.minDelay, r.maxDelay
	if hi < lo {
		hi = lo
	}
	d := lo + time.Duration(r.rng.Float64()*float64(hi-lo))

	r.logger.Infof("Waiting %.2f seconds...", d.Seconds())
	_ = r.sleep(ctx, d)
}
