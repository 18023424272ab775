package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/agbruneau/hookorder/internal/retry"
)

// maxPageSize bounds how much of a response body is read.
const maxPageSize = 8 << 20

// Fetcher downloads server-rendered pages with retries.
type Fetcher struct {
	Client *http.Client
	Retry  retry.Config
	Logger *slog.Logger
}

// FetchPage GETs url. Connection errors and 5xx responses are retried with
// backoff; 4xx responses fail immediately.
func FetchPage(ctx context.Context, client *http.Client, url string, cfg retry.Config) ([]byte, error) {
	f := &Fetcher{Client: client, Retry: cfg}
	return f.Fetch(ctx, url)
}

// Fetch performs the request described on FetchPage.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var page []byte
	res := retry.DoWithCallback(ctx, f.Retry, func() error {
		body, err := get(ctx, client, url)
		if err != nil {
			return err
		}
		page = body
		return nil
	}, func(attempt int, err error, next time.Duration) {
		logger.Warn("fetch failed, retrying", "url", url, "attempt", attempt, "next", next, "error", err)
	})
	if res.Err != nil {
		return nil, fmt.Errorf("fetch %s after %d attempt(s): %w", url, res.Attempts, res.Err)
	}
	return page, nil
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, retry.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
