package identity

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
)

// Family selects which browser a user agent should claim to be.
type Family string

const (
	// FamilyAny matches every entry
	FamilyAny     Family = ""
	FamilyChrome  Family = "chrome"
	FamilyFirefox Family = "firefox"
)

// ErrNoUserAgent is returned by a Source that has nothing for the requested
// family.
var ErrNoUserAgent = errors.New("no user agent available")

// Source is the live user-agent capability. Implementations may fail; the
// Rotator never passes a failure on.
type Source interface {
	UserAgent(family Family) (string, error)
}

//go:embed useragents.json
var datasetJSON []byte

type datasetEntry struct {
	Family Family `json:"family"`
	UA     string `json:"ua"`
}

// DatasetSource serves user agents from the embedded dataset of real browser
// strings.
type DatasetSource struct {
	byFamily map[Family][]string
	all      []string
	rng      *rand.Rand
}

// NewDatasetSource parses the embedded dataset.
func NewDatasetSource(rng *rand.Rand) (*DatasetSource, error) {
	return newDatasetSource(datasetJSON, rng)
}

func newDatasetSource(data []byte, rng *rand.Rand) (*DatasetSource, error) {
	var entries []datasetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode user agent dataset: %w", err)
	}

	s := &DatasetSource{
		byFamily: make(map[Family][]string),
		rng:      rng,
	}
	for _, e := range entries {
		if e.UA == "" {
			continue
		}
		s.byFamily[e.Family] = append(s.byFamily[e.Family], e.UA)
		s.all = append(s.all, e.UA)
	}
	return s, nil
}

// UserAgent returns a random dataset entry of the given family.
func (s *DatasetSource) UserAgent(family Family) (string, error) {
	pool := s.all
	if family != FamilyAny {
		pool = s.byFamily[family]
	}
	if len(pool) == 0 {
		return "", fmt.Errorf("%w for family %q", ErrNoUserAgent, family)
	}
	return pool[s.rng.IntN(len(pool))], nil
}
