// Package httpx provides the outbound HTTP client shared by the site
// downloaders: a process-wide rate limit, bounded retries with exponential
// backoff, response decoding and streamed downloads through a .partial file.
package httpx
