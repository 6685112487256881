// Package runner sequences a viewing run: it gates on the browser being
// usable, creates the single session with the rotation chosen for the run,
// walks the URL list with bounded retries and always tears the session down
// at the end.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/viewbot/pkg/browser"
	"github.com/entrhq/viewbot/pkg/config"
	"github.com/entrhq/viewbot/pkg/egress"
	"github.com/entrhq/viewbot/pkg/identity"
	"github.com/entrhq/viewbot/pkg/logging"
)

var (
	// ErrDependencyMissing means the browser capability check failed. No
	// session was created.
	ErrDependencyMissing = errors.New("required browser capability is missing")

	// ErrNoURLs means there was nothing to watch.
	ErrNoURLs = errors.New("no video URLs configured")
)

// Sessions creates and tears down the run's browser session.
// *browser.Factory implements it.
type Sessions interface {
	Preflight() error
	Create(identity, endpoint string) (browser.Page, error)
	Destroy()
	Shutdown() error
}

// Viewer watches a single URL. *viewer.Routine implements it.
type Viewer interface {
	Watch(ctx context.Context, page browser.Page, url string) bool
	DelayBetweenVideos(ctx context.Context)
}

// Deps are the collaborators of a run. Identities, Egress and Reports are
// optional.
type Deps struct {
	Settings   *config.Settings
	Sessions   Sessions
	Viewer     Viewer
	Identities *identity.Rotator
	Egress     *egress.Rotator
	Reports    *ReportWriter
	Logger     *logging.Logger
}

// Runner runs the URL list once.
type Runner struct {
	deps Deps
	log  *logging.Logger
	now  func() time.Time
}

// New creates a runner.
func New(deps Deps) *Runner {
	log := deps.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{
		deps: deps,
		log:  log,
		now:  time.Now,
	}
}

var banner = strings.Repeat("=", 60)

// Run executes the run and returns its summary. The summary is never nil.
// The returned error is set only for fatal conditions: a failed capability
// check, an empty URL list, a session that could not be created or an
// unexpected panic. Per-URL failures and interruption are reported through
// the summary alone.
//
// Cleanup runs exactly once before Run returns, whatever the outcome.
func (r *Runner) Run(ctx context.Context) (summary *Summary, err error) {
	urls := r.deps.Settings.URLs
	summary = &Summary{
		RunID:     r.log.RunID(),
		Status:    statusRunning,
		StartTime: r.now(),
		LogFile:   r.log.LogPath(),
		Outcomes:  []Outcome{},
		Metrics:   Metrics{Total: len(urls)},
	}

	r.log.Infof("%s", banner)
	r.log.Infof("YouTube Viewer Bot - Starting")
	r.log.Infof("%s", banner)

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("Unexpected error: %v", rec)
			err = fmt.Errorf("unexpected error: %v", rec)
			summary.Status = statusFailed
			summary.Error = err.Error()
		}
		r.cleanup()
		r.finish(summary)
	}()

	r.log.Infof("Checking dependencies...")
	if err := r.deps.Sessions.Preflight(); err != nil {
		r.log.Errorf("Dependency check failed. Please install the browser runtime.")
		return r.abort(summary, fmt.Errorf("%w: %w", ErrDependencyMissing, err))
	}

	if len(urls) == 0 {
		r.log.Errorf("No YouTube URLs configured")
		return r.abort(summary, ErrNoURLs)
	}
	r.log.Infof("Found %d video(s) to watch", len(urls))

	for _, u := range r.deps.Settings.UnrecognizedURLs() {
		r.log.Warnf("URL does not look like a video page: %s", u)
	}

	ua, endpoint := r.chooseRotation()
	summary.UserAgent = ua
	summary.Proxy = egress.Redact(endpoint)

	page, err := r.deps.Sessions.Create(ua, endpoint)
	if err != nil {
		r.log.Errorf("Failed to setup driver: %v", err)
		summary.Status = statusFailed
		summary.Error = err.Error()
		return summary, err
	}

	for idx, url := range urls {
		if ctx.Err() != nil {
			break
		}

		r.log.Infof("%s", banner)
		r.log.Infof("Processing video %d/%d", idx+1, len(urls))
		r.log.Infof("%s", banner)

		summary.record(r.watchWithRetry(ctx, page, url))

		if idx < len(urls)-1 && ctx.Err() == nil {
			r.deps.Viewer.DelayBetweenVideos(ctx)
		}
	}

	if ctx.Err() != nil {
		r.log.Infof("Bot stopped by user")
		summary.Status = statusInterrupted
	}
	return summary, nil
}

func (r *Runner) abort(summary *Summary, err error) (*Summary, error) {
	summary.Status = statusAborted
	summary.Error = err.Error()
	return summary, err
}

// chooseRotation picks the identity and egress for the run's only session.
// Empty strings keep the browser defaults.
func (r *Runner) chooseRotation() (ua, endpoint string) {
	rot := r.deps.Settings.Rotation

	if rot.RotateUserAgent && r.deps.Identities != nil {
		ua = r.deps.Identities.Chrome()
	}

	if rot.RotateProxy {
		if r.deps.Egress == nil || !r.deps.Egress.HasEndpoints() {
			r.log.Warnf("Proxy rotation enabled but no proxies configured, connecting directly")
			return ua, ""
		}
		endpoint, _ = r.deps.Egress.Pick(rot.ProxyMode)
	}
	return ua, endpoint
}

// watchWithRetry gives url up to max_retries attempts.
func (r *Runner) watchWithRetry(ctx context.Context, page browser.Page, url string) Outcome {
	maxRetries := r.deps.Settings.MaxRetries
	outcome := Outcome{URL: url}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		outcome.Attempts = attempt
		r.log.Infof("Attempt %d/%d", attempt, maxRetries)

		if r.deps.Viewer.Watch(ctx, page, url) {
			outcome.Succeeded = true
			return outcome
		}

		r.log.Warnf("Failed to watch video (attempt %d/%d)", attempt, maxRetries)
		if ctx.Err() != nil {
			outcome.Error = "interrupted"
			return outcome
		}
		if attempt < maxRetries {
			r.log.Infof("Retrying...")
		}
	}

	r.log.Errorf("Failed to watch video after %d attempts: %s", maxRetries, url)
	outcome.Error = fmt.Sprintf("failed after %d attempts", maxRetries)
	return outcome
}

// cleanup tears the session down and stops the driver. Errors are logged.
func (r *Runner) cleanup() {
	r.log.Infof("Cleaning up resources...")
	r.deps.Sessions.Destroy()
	if err := r.deps.Sessions.Shutdown(); err != nil {
		r.log.Errorf("Error stopping browser driver: %v", err)
	}
	r.log.Infof("Cleanup completed")
}

func (r *Runner) finish(summary *Summary) {
	summary.settle(r.now())

	r.log.Infof("%s", banner)
	r.log.Infof("YouTube Bot - Completed: %s (%d/%d watched, duration: %s)",
		summary.Status, summary.Metrics.Succeeded, summary.Metrics.Total, summary.Duration.Round(time.Second))
	r.log.Infof("%s", banner)

	if r.deps.Reports == nil {
		return
	}
	if err := r.deps.Reports.WriteAll(summary); err != nil {
		r.log.Warnf("Failed to write run report: %v", err)
		return
	}
	r.log.Infof("Run report written to %s", r.deps.Reports.Dir(summary))
}
