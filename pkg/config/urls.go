package config

import (
	"github.com/gobwas/glob"
)

const (
	schemes     = "{http,https}://"
	youtubeHost = "{www.youtube.com,m.youtube.com,youtube.com}"
)

// videoURLPatterns describe the page shapes the viewer knows how to drive.
// In glob syntax ? matches any character, so the query separator is [?].
var videoURLPatterns = compilePatterns(
	schemes+youtubeHost+"/watch[?]*",
	schemes+youtubeHost+"/shorts/*",
	schemes+youtubeHost+"/live/*",
	schemes+"youtu.be/*",
)

func compilePatterns(patterns ...string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, glob.MustCompile(p))
	}
	return globs
}

// IsVideoURL reports whether u looks like a video page.
func IsVideoURL(u string) bool {
	for _, g := range videoURLPatterns {
		if g.Match(u) {
			return true
		}
	}
	return false
}

// UnrecognizedURLs returns the configured URLs that do not look like video
// pages. They are still attempted.
func (s *Settings) UnrecognizedURLs() []string {
	var out []string
	for _, u := range s.URLs {
		if !IsVideoURL(u) {
			out = append(out, u)
		}
	}
	return out
}
