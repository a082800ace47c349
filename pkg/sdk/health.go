package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Health is the daemon's aggregated health report.
type Health struct {
	// Status is "ok", "degraded", or "error".
	Status string `json:"status"`
	// Checks maps each source to its own status.
	Checks map[string]string `json:"checks"`
}

// Health fetches the daemon's health report. A degraded or failing daemon is
// described in the result, not returned as an error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	start := time.Now()

	h, err := c.health(ctx)
	c.obs.observe("health", start, err)
	return h, err
}

func (c *Client) health(ctx context.Context) (Health, error) {
	resp, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	// An unhealthy daemon answers 503 with the same report body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return Health{}, decodeAPIError(resp)
	}
	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Health{}, fmt.Errorf("sdk: decode response: %w", err)
	}
	return out, nil
}
