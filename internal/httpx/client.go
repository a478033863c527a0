package httpx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// Defaults applied when Options leave a field zero
const (
	DefaultTimeout       = 30 * time.Second
	DefaultChunkSize     = 1 << 20
	DefaultRetryInterval = 500 * time.Millisecond
	MaxRetryInterval     = 10 * time.Second
	PartialSuffix        = ".partial"
)

// StatusError is returned for responses outside the 2xx range
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// IsRetryableStatus reports whether a status code is worth another attempt
func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// Options configures a Client
type Options struct {
	RequestsPerSecond float64
	Burst             int
	Retries           int
	UserAgent         string
	RetryInterval     time.Duration
}

// Client is an HTTP client with rate limiting and retries. It is safe for
// concurrent use.
type Client struct {
	http          *http.Client
	limiter       *rate.Limiter
	userAgent     string
	maxTries      uint
	retryInterval time.Duration
	logger        *slog.Logger
}

// New creates a Client
func New(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	tries := opts.Retries
	if tries <= 0 {
		tries = 1
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   5,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   15 * time.Second,
				DisableCompression:    true,
				ResponseHeaderTimeout: DefaultTimeout,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				return nil
			},
		},
		limiter:       rate.NewLimiter(limit, burst),
		userAgent:     opts.UserAgent,
		maxTries:      uint(tries),
		retryInterval: interval,
		logger:        logger.With("component", "httpx"),
	}
}

// GetBytes fetches url and returns the decoded body. timeout bounds the wait
// for each read, not the whole transfer.
func (c *Client) GetBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var body []byte
	err := c.do(ctx, url, timeout, true, func(resp *http.Response, touch func()) error {
		r, err := decodedBody(resp)
		if err != nil {
			return err
		}
		defer r.Close()

		data, err := io.ReadAll(&idleReader{r: r, touch: touch})
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	return body, err
}

// DownloadToFile streams url into dst in chunks of chunkSize bytes. Data is
// written to dst+".partial" and renamed into place on success; the partial
// file is removed on failure. It returns the number of bytes written.
func (c *Client) DownloadToFile(ctx context.Context, url, dst string, timeout time.Duration, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	partial := dst + PartialSuffix

	var written int64
	err := c.do(ctx, url, timeout, false, func(resp *http.Response, touch func()) error {
		f, err := os.Create(partial)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", partial, err)
		}

		buf := make([]byte, chunkSize)
		n, copyErr := io.CopyBuffer(f, &idleReader{r: resp.Body, touch: touch}, buf)
		if copyErr == nil {
			copyErr = f.Sync()
		}
		if closeErr := f.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			_ = os.Remove(partial)
			return fmt.Errorf("failed to write %s: %w", partial, copyErr)
		}
		written = n
		return os.Rename(partial, dst)
	})
	if err != nil {
		_ = os.Remove(partial)
		return 0, err
	}
	return written, nil
}

// do issues a GET with retries. handle runs once a 200 response is in hand;
// its errors are not retried because the body may already be consumed.
func (c *Client) do(ctx context.Context, url string, timeout time.Duration, acceptEncoded bool, handle func(*http.Response, func()) error) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	operation := func() (struct{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		reqCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		timer := time.AfterFunc(timeout, cancel)
		defer timer.Stop()
		touch := func() { timer.Reset(timeout) }

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if acceptEncoded {
			req.Header.Set("Accept-Encoding", "gzip, br")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(ctx.Err())
			}
			c.logger.Debug("request failed", "url", url, "error", err)
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
			if IsRetryableStatus(resp.StatusCode) {
				c.logger.Debug("retryable status", "url", url, "status", resp.StatusCode)
				return struct{}{}, statusErr
			}
			return struct{}{}, backoff.Permanent(statusErr)
		}

		touch()
		if err := handle(resp, touch); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.MaxInterval = MaxRetryInterval

	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(c.maxTries))
	return err
}

// decodedBody wraps the response body according to Content-Encoding
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		return gz, nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}

// idleReader calls touch after every successful read so the idle timer only
// fires when the peer stops sending
type idleReader struct {
	r     io.Reader
	touch func()
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.touch()
	}
	return n, err
}
