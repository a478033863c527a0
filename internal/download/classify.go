package download

import (
	"net/url"
	"strings"
)

// Site selects the retrieval strategy for a URL
type Site string

const (
	SiteGeneric Site = "generic"
	SiteTwitter Site = "twitter"
	SiteArchive Site = "archive"
)

// String returns the site name
func (s Site) String() string {
	return string(s)
}

var hostPrefixes = []string{"www.", "mobile.", "m."}

// Classify maps a URL to a Site by host. Unknown hosts and unparsable input
// are SiteGeneric.
func Classify(rawURL string) Site {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return SiteGeneric
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range hostPrefixes {
		host = strings.TrimPrefix(host, prefix)
	}

	switch {
	case host == "twitter.com" || host == "x.com":
		return SiteTwitter
	case host == "archive.org" || strings.HasSuffix(host, ".archive.org"):
		return SiteArchive
	default:
		return SiteGeneric
	}
}
