package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	neturl "net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Twitter/X fetch constants
const (
	TwitterPageTimeout  = 30 * time.Second
	TwitterMediaTimeout = 60 * time.Second
	TwitterTitlePrefix  = "X_Video_"
	MinVideoSize        = 10000
	twitterChunkSize    = 8192
)

var (
	tweetIDPattern = regexp.MustCompile(`status/(\d+)`)

	// Ordered by preference
	twitterVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`https://video\.twimg\.com/amplify_video/\d+/vid/[^"'&?]+\.mp4[^"'\s]*`),
		regexp.MustCompile(`https://video\.twimg\.com/ext_tw_video/\d+/[^"'&?]+\.mp4[^"'\s]*`),
		regexp.MustCompile(`https://video\.twimg\.com/tweet_video/[^"'&?]+\.mp4[^"'\s]*`),
		regexp.MustCompile(`https://video\.twimg\.com/[^"'&?]+\.mp4[^"'\s]*`),
	}

	twitterMetaSelectors = []string{
		`meta[property="og:video"]`,
		`meta[property="og:video:url"]`,
		`meta[property="og:video:secure_url"]`,
		`meta[name="twitter:player:stream"]`,
	}

	errNoTweetID = errors.New("could not extract tweet id")
	errNoVideo   = errors.New("no video url found in page")
)

// Getter is the outbound HTTP surface the site fetchers need
type Getter interface {
	GetBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
	DownloadToFile(ctx context.Context, url, dst string, timeout time.Duration, chunkSize int) (int64, error)
}

// TwitterFetcher scrapes a status page for its video URL
type TwitterFetcher struct {
	dir    string
	client Getter
	logger *slog.Logger
}

// NewTwitterFetcher creates a TwitterFetcher writing into dir
func NewTwitterFetcher(dir string, client Getter, logger *slog.Logger) *TwitterFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &TwitterFetcher{dir: dir, client: client, logger: logger.With("component", "twitter")}
}

// Fetch implements Fetcher
func (t *TwitterFetcher) Fetch(ctx context.Context, url string) (*Fetched, error) {
	match := tweetIDPattern.FindStringSubmatch(url)
	if match == nil {
		return nil, fetchError(SiteTwitter, StageParse, url, errNoTweetID)
	}
	tweetID := match[1]
	title := TwitterTitlePrefix + tweetID
	filename := title + ".mp4"

	t.logger.Info("starting Twitter/X video download", "url", url)

	page, err := t.client.GetBytes(ctx, normalizeTwitterURL(url), TwitterPageTimeout)
	if err != nil {
		return nil, fetchError(SiteTwitter, StageMetadata, url, err)
	}

	videoURL := FindTwitterVideoURL(page)
	if videoURL == "" {
		return nil, fetchError(SiteTwitter, StageExtract, url, errNoVideo)
	}
	t.logger.Debug("found video url", "video_url", videoURL)

	dst := filepath.Join(t.dir, filename)
	written, err := t.client.DownloadToFile(ctx, videoURL, dst, TwitterMediaTimeout, twitterChunkSize)
	if err != nil {
		return nil, fetchError(SiteTwitter, StageFetch, url, err)
	}
	if written <= MinVideoSize {
		_ = os.Remove(dst)
		return nil, fetchError(SiteTwitter, StageValidate, url, fmt.Errorf("downloaded file too small: %d bytes", written))
	}

	return &Fetched{Filename: filename, Title: title}, nil
}

// FindTwitterVideoURL returns the preferred video URL in a status page, first
// by URL pattern and then by video meta tags
func FindTwitterVideoURL(page []byte) string {
	html := string(page)
	for _, pattern := range twitterVideoPatterns {
		if m := pattern.FindString(html); m != "" {
			return m
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	for _, selector := range twitterMetaSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}
	return ""
}

// normalizeTwitterURL rewrites x.com hosts to twitter.com
func normalizeTwitterURL(raw string) string {
	u, err := neturl.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.ToLower(u.Host)
	switch {
	case host == "x.com":
		u.Host = "twitter.com"
	case strings.HasSuffix(host, ".x.com"):
		u.Host = strings.TrimSuffix(host, "x.com") + "twitter.com"
	}
	return u.String()
}
