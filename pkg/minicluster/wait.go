package minicluster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// WaitForApp polls the app's health endpoint on the configured health path
// (/health by default) until it answers 200 or the polling budget runs out.
func (c *Cluster) WaitForApp(ctx context.Context, app string, port int) error {
	return c.WaitForAppPath(ctx, app, port, c.opts.HealthPath)
}

// WaitForAppPath polls http://<host>:<port><path> with a fixed interval
// between attempts (1 second unless overridden), up to the configured
// attempt budget (100 unless overridden). It blocks the caller for the whole
// wait; cancelling ctx is the only way to abort early. A warning is logged
// on every 5th failed attempt to surface progress without spamming.
//
// On exhaustion it returns an *ExhaustedError naming the app, port, attempt
// count and the last failure, so the caller can abort its bootstrap with a
// useful diagnostic instead of continuing with a half-up cluster.
func (c *Cluster) WaitForAppPath(ctx context.Context, app string, port int, path string) error {
	url := fmt.Sprintf("http://%s%s", net.JoinHostPort(c.opts.Host, strconv.Itoa(port)), path)
	lastErr := errors.New("no attempts made")
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		err := c.probeHTTP(ctx, url)
		if err == nil {
			c.logger().Info("started app", slog.String("app", app), slog.Int("port", port))
			return nil
		}
		if ctxErr := context.Cause(ctx); ctxErr != nil {
			return ctxErr
		}
		lastErr = err
		if attempt%5 == 1 {
			c.logger().Warn("app is not up yet, retrying",
				slog.String("app", app),
				slog.String("url", url),
				slog.Int("attempt", attempt),
			)
		}
		if attempt == c.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-time.After(c.opts.RetryInterval):
		}
	}
	return &ExhaustedError{
		App:      app,
		Port:     port,
		Attempts: c.opts.MaxAttempts,
		Err:      lastErr,
	}
}

func (c *Cluster) probeHTTP(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused across attempts.
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
