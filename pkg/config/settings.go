package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPath is where the entry point looks for its configuration when no
// override is given.
const DefaultPath = "config/config.json"

// Settings is the validated run configuration. It is loaded once and treated
// as read-only afterwards.
type Settings struct {
	// Videos to watch, in order
	URLs []string `json:"youtube_urls" yaml:"youtube_urls"`

	// Proxy endpoints (host:port or user:pass@host:port); may be empty
	Proxies []string `json:"proxies" yaml:"proxies"`

	Delays   Delays          `json:"delays" yaml:"delays"`
	Browser  BrowserSettings `json:"browser" yaml:"browser"`
	Rotation Rotation        `json:"rotation" yaml:"rotation"`

	// Attempts per URL before it is given up on
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	LogLevel string `json:"log_level" yaml:"log_level"`
	LogDir   string `json:"log_dir" yaml:"log_dir"`

	Report ReportSettings `json:"report" yaml:"report"`
}

// Delays holds the timing bounds, all in whole seconds.
type Delays struct {
	MinWatchTime          int `json:"min_watch_time" yaml:"min_watch_time"`
	MaxWatchTime          int `json:"max_watch_time" yaml:"max_watch_time"`
	MinDelayBetweenVideos int `json:"min_delay_between_videos" yaml:"min_delay_between_videos"`
	MaxDelayBetweenVideos int `json:"max_delay_between_videos" yaml:"max_delay_between_videos"`
}

// BrowserSettings controls how the browser session is launched.
type BrowserSettings struct {
	Headless      bool   `json:"headless" yaml:"headless"`
	WindowSize    string `json:"window_size" yaml:"window_size"` // "W,H"
	DisableImages bool   `json:"disable_images" yaml:"disable_images"`
}

// ProxyMode selects how the egress endpoint is chosen at session creation.
type ProxyMode string

const (
	// ProxyModeRandom picks a uniformly random endpoint
	ProxyModeRandom ProxyMode = "random"
	// ProxyModeRoundRobin walks the endpoint list in order
	ProxyModeRoundRobin ProxyMode = "round_robin"
)

// Rotation holds the identity and egress rotation flags.
type Rotation struct {
	RotateUserAgent bool      `json:"rotate_user_agent" yaml:"rotate_user_agent"`
	RotateProxy     bool      `json:"rotate_proxy" yaml:"rotate_proxy"`
	ProxyMode       ProxyMode `json:"proxy_mode" yaml:"proxy_mode"`
}

// ReportSettings controls the end-of-run report artifacts.
type ReportSettings struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

var validLogLevels = map[string]bool{
	"DEBUG":    true,
	"INFO":     true,
	"WARNING":  true,
	"ERROR":    true,
	"CRITICAL": true,
}

// DefaultSettings returns the values used for every optional field.
func DefaultSettings() *Settings {
	return &Settings{
		Proxies: []string{},
		Delays: Delays{
			MinDelayBetweenVideos: 5,
			MaxDelayBetweenVideos: 15,
		},
		Browser: BrowserSettings{
			WindowSize: "1920,1080",
		},
		Rotation: Rotation{
			ProxyMode: ProxyModeRandom,
		},
		MaxRetries: 3,
		LogLevel:   "INFO",
		LogDir:     "logs",
		Report: ReportSettings{
			OutputDir: "reports",
		},
	}
}

// Validate checks field values and normalizes the log level. It returns the
// first problem found.
func (s *Settings) Validate() error {
	if len(s.URLs) == 0 {
		return invalid("youtube_urls", "must be a non-empty list")
	}
	for i, u := range s.URLs {
		if strings.TrimSpace(u) == "" {
			return invalid(fmt.Sprintf("youtube_urls[%d]", i), "must not be empty")
		}
	}

	d := s.Delays
	for _, f := range []struct {
		name  string
		value int
	}{
		{"delays.min_watch_time", d.MinWatchTime},
		{"delays.max_watch_time", d.MaxWatchTime},
		{"delays.min_delay_between_videos", d.MinDelayBetweenVideos},
		{"delays.max_delay_between_videos", d.MaxDelayBetweenVideos},
	} {
		if f.value < 0 {
			return invalid(f.name, "cannot be negative")
		}
	}
	if d.MaxWatchTime < d.MinWatchTime {
		return invalid("delays.max_watch_time", "must be >= min_watch_time")
	}
	if d.MaxDelayBetweenVideos < d.MinDelayBetweenVideos {
		return invalid("delays.max_delay_between_videos", "must be >= min_delay_between_videos")
	}

	if _, _, err := ParseWindowSize(s.Browser.WindowSize); err != nil {
		return invalid("browser.window_size", err.Error())
	}

	switch s.Rotation.ProxyMode {
	case "":
		s.Rotation.ProxyMode = ProxyModeRandom
	case ProxyModeRandom, ProxyModeRoundRobin:
	default:
		return invalid("rotation.proxy_mode", fmt.Sprintf("must be %q or %q", ProxyModeRandom, ProxyModeRoundRobin))
	}

	if s.MaxRetries <= 0 {
		return invalid("max_retries", "must be a positive integer")
	}

	level := strings.ToUpper(strings.TrimSpace(s.LogLevel))
	if level == "WARN" {
		level = "WARNING"
	}
	if !validLogLevels[level] {
		return invalid("log_level", "must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL")
	}
	s.LogLevel = level

	if s.Proxies == nil {
		s.Proxies = []string{}
	}
	if s.LogDir == "" {
		s.LogDir = "logs"
	}
	if s.Report.OutputDir == "" {
		s.Report.OutputDir = "reports"
	}

	return nil
}

// WatchTimeRange returns the watch-time bounds.
func (s *Settings) WatchTimeRange() (lo, hi time.Duration) {
	return seconds(s.Delays.MinWatchTime), seconds(s.Delays.MaxWatchTime)
}

// DelayRange returns the inter-video delay bounds.
func (s *Settings) DelayRange() (lo, hi time.Duration) {
	return seconds(s.Delays.MinDelayBetweenVideos), seconds(s.Delays.MaxDelayBetweenVideos)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// ParseWindowSize parses a "W,H" window size.
func ParseWindowSize(size string) (width, height int, err error) {
	parts := strings.Split(size, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("must be formatted as \"W,H\", got %q", size)
	}
	width, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", size)
	}
	height, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", size)
	}
	return width, height, nil
}
