package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want Site
	}{
		{"https://twitter.com/user/status/123", SiteTwitter},
		{"https://x.com/user/status/123", SiteTwitter},
		{"https://mobile.twitter.com/user/status/123", SiteTwitter},
		{"https://www.x.com/user/status/123", SiteTwitter},
		{"https://archive.org/details/some_item", SiteArchive},
		{"https://ia800.us.archive.org/embed/some_item", SiteArchive},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", SiteGeneric},
		{"https://notx.com/status/1", SiteGeneric},
		{"https://example.com/archive.org/details/x", SiteGeneric},
		{"not a url", SiteGeneric},
		{"://broken", SiteGeneric},
		{"", SiteGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url))
		})
	}
}
