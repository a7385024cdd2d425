package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Keepalive sends GET url every interval until ctx is done. Failures are
// logged and do not stop the loop.
func Keepalive(ctx context.Context, client *http.Client, url string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping(ctx, client, url)
		}
	}
}

func ping(ctx context.Context, client *http.Client, url string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("keepalive request", "url", url, "error", err)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("keepalive ping failed", "url", url, "error", err)
		}
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	slog.Debug("keepalive ping", "url", url, "status", resp.StatusCode)
}
