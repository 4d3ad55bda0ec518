package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Probe checks backend availability at startup. GET /health is idempotent,
// so bounded retries with backoff are safe here; Call itself never retries.
func Probe(ctx context.Context, baseURL string, timeout time.Duration) error {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &NetworkError{Detail: "health probe failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Status: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}
