// Package download streams release artifacts into the shared download cache
// with bounded retry and progress reporting.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ErrRetriesExhausted reports that every download attempt failed. The last
// underlying cause is carried in the wrapped message.
var ErrRetriesExhausted = errors.New("download failed after retries")

// Some release hosts reject requests that identify as a generic Go client.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) naner/1.0"

// Client downloads URLs into local files.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Retries   int
	Backoff   time.Duration

	// Progress receives the progress bar; nil disables progress output.
	Progress io.Writer

	// Logf records attempt-level detail; nil disables logging.
	Logf func(format string, args ...any)
}

// NewClient returns a downloader with the defaults used by the installer:
// three attempts with a fixed two second backoff.
func NewClient(progress io.Writer, logf func(format string, args ...any)) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 30 * time.Minute},
		UserAgent: defaultUserAgent,
		Retries:   3,
		Backoff:   2 * time.Second,
		Progress:  progress,
		Logf:      logf,
	}
}

// Fetch downloads url into dest. When dest already exists and force is
// false the download is skipped entirely and treated as success; callers
// invalidate the cache by deleting the file before forcing a refresh.
func (c *Client) Fetch(ctx context.Context, url, dest string, force bool) error {
	if !force {
		if _, err := os.Stat(dest); err == nil {
			c.logf("download cached: %s", dest)
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("prepare download destination: %w", err)
	}

	retries := c.Retries
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		lastErr = c.fetchOnce(ctx, url, dest)
		if lastErr == nil {
			return nil
		}
		c.logf("download attempt %d/%d failed for %s: %v", attempt, retries, url, lastErr)

		if attempt < retries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("download %s: %w", url, ctx.Err())
			case <-time.After(c.Backoff):
			}
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrRetriesExhausted, url, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	partial := dest + ".part"
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create partial file: %w", err)
	}

	var sink io.Writer = out
	var bar *progressbar.ProgressBar
	if c.Progress != nil {
		bar = c.newBar(resp.ContentLength, filepath.Base(dest))
		sink = io.MultiWriter(out, bar)
	}

	_, copyErr := io.Copy(sink, resp.Body)
	closeErr := out.Close()
	if bar != nil {
		_ = bar.Finish()
	}

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(partial)
		if copyErr != nil {
			return fmt.Errorf("write body: %w", copyErr)
		}
		return fmt.Errorf("close partial file: %w", closeErr)
	}

	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

// newBar builds a byte-count progress bar. A negative total (unknown
// content length) produces a spinner without a percentage.
func (c *Client) newBar(total int64, label string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(c.Progress),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return defaultUserAgent
}

func (c *Client) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}
