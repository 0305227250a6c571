package posegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fightsight/engine/pkg/logger"
)

// HTTP status code constants.
const (
	statusOK       = 200
	statusAccepted = 202
)

const pollInterval = 500 * time.Millisecond

// httpClient wraps http.Client with context-aware helpers.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

func (c *httpClient) post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// checkServiceHealth verifies the engine is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitSession posts the generated pose file as a new analysis session and
// waits for it to reach a terminal status.
func submitSession(ctx context.Context, config *Config, posesPath string, stats *Stats) error {
	abs, err := filepath.Abs(posesPath)
	if err != nil {
		return fmt.Errorf("failed to resolve poses path: %w", err)
	}

	client := newHTTPClient(config.Timeout)
	resp, err := client.post(ctx, config.BaseURL+"/sessions", map[string]interface{}{
		"sport":      config.Sport,
		"rounds":     config.Rounds,
		"poses_path": abs,
	})
	if err != nil {
		return fmt.Errorf("failed to submit session: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read submit response: %w", err)
	}
	if resp.StatusCode != statusAccepted {
		return fmt.Errorf("session submission failed with status %d: %s", resp.StatusCode, string(body))
	}

	var submitted struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &submitted); err != nil {
		return fmt.Errorf("failed to decode submit response: %w", err)
	}
	stats.SessionID = submitted.ID
	logger.Get().Info(ctx, "session submitted", logger.String("sessionID", submitted.ID))

	if config.Wait <= 0 {
		stats.FinalStatus = submitted.Status
		return nil
	}
	return waitForTerminal(ctx, config, client, submitted.ID, stats)
}

// waitForTerminal polls the session until it completes, fails, or the wait
// window elapses.
func waitForTerminal(ctx context.Context, config *Config, client *httpClient, sessionID string, stats *Stats) error {
	deadline := time.Now().Add(config.Wait)
	url := config.BaseURL + "/sessions/" + sessionID

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait cancelled: %w", ctx.Err())
		case <-time.After(pollInterval):
		}

		resp, err := client.get(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to poll session: %w", err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read session response: %w", err)
		}
		if resp.StatusCode != statusOK {
			return fmt.Errorf("session poll failed with status %d", resp.StatusCode)
		}

		var session struct {
			Status       string  `json:"status"`
			Progress     int     `json:"progress"`
			TotalStrikes int     `json:"total_strikes"`
			TotalCost    float64 `json:"total_cost"`
		}
		if err := json.Unmarshal(body, &session); err != nil {
			return fmt.Errorf("failed to decode session response: %w", err)
		}

		if config.Verbose {
			logger.Get().Info(ctx, "session progress",
				logger.String("status", session.Status),
				logger.Int("progress", session.Progress))
		}

		if session.Status == "completed" || session.Status == "failed" {
			stats.FinalStatus = session.Status
			logger.Get().Info(ctx, "session reached terminal status",
				logger.String("status", session.Status),
				logger.Int("totalStrikes", session.TotalStrikes),
				logger.Float64("totalCost", session.TotalCost))
			return nil
		}
	}

	stats.FinalStatus = "timeout"
	return fmt.Errorf("session %s did not reach a terminal status within %s", sessionID, config.Wait)
}
