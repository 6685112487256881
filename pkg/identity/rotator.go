package identity

import (
	"math/rand/v2"

	"github.com/entrhq/viewbot/pkg/logging"
)

// fallbackAgents is used whenever the source fails or returns nothing.
var fallbackAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Rotator hands out user-agent strings. It always returns a non-empty value.
type Rotator struct {
	source Source
	rng    *rand.Rand
	logger *logging.Logger
}

// New creates a rotator. source may be nil, in which case every call uses
// the fallback pool.
func New(source Source, rng *rand.Rand, logger *logging.Logger) *Rotator {
	return &Rotator{
		source: source,
		rng:    rng,
		logger: logger,
	}
}

// Random returns a user agent of any browser family.
func (r *Rotator) Random() string {
	return r.get(FamilyAny, "random")
}

// Chrome returns a Chrome user agent.
func (r *Rotator) Chrome() string {
	return r.get(FamilyChrome, "Chrome")
}

// Firefox returns a Firefox user agent.
func (r *Rotator) Firefox() string {
	return r.get(FamilyFirefox, "Firefox")
}

// Fallback returns a uniformly random entry of the built-in pool.
func (r *Rotator) Fallback() string {
	ua := fallbackAgents[r.rng.IntN(len(fallbackAgents))]
	r.logger.Infof("Using fallback user agent")
	return ua
}

func (r *Rotator) get(family Family, label string) string {
	if r.source == nil {
		return r.Fallback()
	}

	ua, err := r.source.UserAgent(family)
	switch {
	case err != nil:
		r.logger.Warnf("Failed to get %s user agent: %v, using fallback", label, err)
		return r.Fallback()
	case ua == "":
		r.logger.Warnf("Empty %s user agent from source, using fallback", label)
		return r.Fallback()
	}

	r.logger.Infof("Generated %s user agent", label)
	return ua
}
