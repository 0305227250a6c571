// Package provider implements HTTP clients for the external classification
// and report-generation collaborators.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fightsight/engine/internal/domain/classify"
)

const (
	defaultTimeout = 30 * time.Second

	classifyPath = "/v1/classify"
	reportPath   = "/v1/report"

	// Response bodies beyond this size indicate a misbehaving provider.
	maxBodyBytes = 1 << 20
)

// ClassifierClient calls the strike-classification provider over HTTP.
// It satisfies classify.Classifier and maps transport and status failures
// into the transient/fatal error classes.
type ClassifierClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClassifierClient creates a classifier client for the given base URL.
func NewClassifierClient(baseURL, apiKey string, opts ...Option) *ClassifierClient {
	return &ClassifierClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  buildClient(opts),
	}
}

// Classify submits one candidate's evidence and returns the verdict.
func (c *ClassifierClient) Classify(ctx context.Context, req classify.Request) (classify.Result, error) {
	var res classify.Result
	if err := c.post(ctx, c.baseURL+classifyPath, req, &res); err != nil {
		return classify.Result{}, err
	}
	return res, nil
}

func (c *ClassifierClient) post(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", classify.ErrFatal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", classify.ErrFatal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Network failures and timeouts can heal on retry.
		return fmt.Errorf("%w: %v", classify.ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", classify.ErrTransient, err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed response body: %v", classify.ErrFatal, err)
	}
	return nil
}

// classifyStatus maps an HTTP status into the provider error taxonomy.
// Timeouts, throttling and server faults are transient. Authentication
// failures and quota exhaustion are fatal, as is any other client error.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return fmt.Errorf("%w: provider returned %d", classify.ErrTransient, code)
	default:
		return fmt.Errorf("%w: provider returned %d", classify.ErrFatal, code)
	}
}
