// Package download resolves a URL to a file in the local cache. A Resolver
// answers from the playlist index when it can and otherwise dispatches to a
// site-specific Fetcher: yt-dlp for generic sites (via
// github.com/lrstanley/go-ytdlp), page scraping for Twitter/X and the
// metadata API for Archive.org.
package download
