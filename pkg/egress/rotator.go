// Package egress chooses the proxy endpoint a browser session routes its
// traffic through.
//
// A Rotator is not safe for concurrent use: Next advances an unsynchronized
// cursor. The viewer runs single-threaded and creates one session per run, so
// nothing shares a Rotator.
package egress

import (
	"math/rand/v2"
	"strings"

	"github.com/entrhq/viewbot/pkg/config"
	"github.com/entrhq/viewbot/pkg/logging"
)

// Rotator selects endpoints from a fixed list.
type Rotator struct {
	endpoints []string
	cursor    int
	rng       *rand.Rand
	logger    *logging.Logger
}

// New creates a rotator over endpoints, which may be empty. Entries that
// ParseEndpoint rejects are dropped with a warning so a bad entry can never
// be handed to the browser.
func New(endpoints []string, rng *rand.Rand, logger *logging.Logger) *Rotator {
	list := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		if _, err := ParseEndpoint(ep); err != nil {
			logger.Warnf("Skipping unusable proxy: %v", err)
			continue
		}
		list = append(list, ep)
	}
	return &Rotator{
		endpoints: list,
		rng:       rng,
		logger:    logger,
	}
}

// Random returns a uniformly random endpoint. ok is false when the list is
// empty.
func (r *Rotator) Random() (endpoint string, ok bool) {
	if len(r.endpoints) == 0 {
		r.logger.Warnf("No proxies available")
		return "", false
	}

	endpoint = r.endpoints[r.rng.IntN(len(r.endpoints))]
	r.logger.Infof("Selected random proxy: %s", Redact(endpoint))
	return endpoint, true
}

// Next returns endpoints in list order, wrapping after the last one.
func (r *Rotator) Next() (endpoint string, ok bool) {
	if len(r.endpoints) == 0 {
		r.logger.Warnf("No proxies available")
		return "", false
	}

	endpoint = r.endpoints[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.endpoints)
	r.logger.Infof("Selected proxy (rotation): %s", Redact(endpoint))
	return endpoint, true
}

// Pick dispatches to Random or Next according to mode.
func (r *Rotator) Pick(mode config.ProxyMode) (string, bool) {
	if mode == config.ProxyModeRoundRobin {
		return r.Next()
	}
	return r.Random()
}

// HasEndpoints reports whether any endpoint is configured.
func (r *Rotator) HasEndpoints() bool {
	return len(r.endpoints) > 0
}

// Count returns the number of configured endpoints.
func (r *Rotator) Count() int {
	return len(r.endpoints)
}

// ValidateFormat reports whether s is plausibly host:port or
// user:pass@host:port. It only checks for a non-empty string with a colon.
func ValidateFormat(s string) bool {
	return s != "" && strings.Contains(s, ":")
}
