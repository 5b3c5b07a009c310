package client

import (
	"context"
	"time"
)

// WaitForDaemon polls the daemon health endpoint with linear backoff
// until it responds or the context expires. Useful for tooling started
// alongside the daemon (the MCP server).
func (c *Client) WaitForDaemon(ctx context.Context, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * 500 * time.Millisecond):
			}
		}
		if _, err := c.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return lastErr
}
