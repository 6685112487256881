package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVideoURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=10", true},
		{"https://m.youtube.com/watch?v=abc", true},
		{"https://www.youtube.com/shorts/abc", true},
		{"https://youtu.be/abc", true},
		{"http://youtu.be/abc", true},
		{"https://youtube.com/live/abc", true},
		{"https://example.com/watch?v=abc", false},
		{"https://www.youtube.com/watchXv=abc", false},
		{"https://www.youtube.com/watch", false},
		{"https://notyoutube.com/watch?v=abc", false},
		{"https://evil.example/www.youtube.com/watch?v=abc", false},
		{"ftp://youtu.be/abc", false},
		{"youtube.com/watch?v=abc", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVideoURL(tt.url), tt.url)
	}
}

func TestSettings_UnrecognizedURLs(t *testing.T) {
	s := &Settings{URLs: []string{
		"https://www.youtube.com/watch?v=a",
		"https://vimeo.com/1",
		"https://youtu.be/b",
	}}

	assert.Equal(t, []string{"https://vimeo.com/1"}, s.UnrecognizedURLs())
}
