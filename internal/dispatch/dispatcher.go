package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kestrel-hq/kestrel/internal/model"
)

// LiveResult captures the outcome of a live webhook invocation.
// Network failures and an open circuit surface as Status 0 with Error
// set; they are response data, never an orchestration error.
type LiveResult struct {
	Status int         `json:"status"`
	Body   interface{} `json:"body,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Dispatcher performs best-effort live invocations of the real webhook
// receiver. Exactly one attempt per call; no retries.
type Dispatcher struct {
	httpClient     *http.Client
	receiverBase   string
	circuitBreaker *CircuitBreaker
}

// NewDispatcher creates a new live dispatcher. The receiver base URL is
// derived from the deployment's project identifier and receiver host.
func NewDispatcher(projectID, receiverHost string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		receiverBase:   fmt.Sprintf("https://%s.%s", projectID, receiverHost),
		circuitBreaker: NewCircuitBreaker(),
	}
}

// ReceiverURL builds the live receiver endpoint for a webhook
func (d *Dispatcher) ReceiverURL(endpointKey string) string {
	return fmt.Sprintf("%s/functions/v1/webhook-receiver/%s", d.receiverBase, endpointKey)
}

// Send POSTs the payload to the live webhook receiver with the
// webhook's secret in the X-Webhook-Secret header. The outcome is
// always returned as data; Send never fails the caller.
func (d *Dispatcher) Send(ctx context.Context, webhook *model.Webhook, payload interface{}) *LiveResult {
	url := d.ReceiverURL(webhook.EndpointKey)

	if !d.circuitBreaker.CanAttempt() {
		slog.Warn("Circuit breaker is open, skipping live dispatch",
			"webhook_id", webhook.ID.Hex(),
			"circuit_state", d.circuitBreaker.StateName(),
		)
		return &LiveResult{Status: 0, Error: "webhook receiver circuit is open"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &LiveResult{Status: 0, Error: fmt.Sprintf("failed to marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &LiveResult{Status: 0, Error: fmt.Sprintf("failed to create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", webhook.Secret)

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.circuitBreaker.RecordFailure()
		slog.Warn("Live dispatch failed",
			"webhook_id", webhook.ID.Hex(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return &LiveResult{Status: 0, Error: err.Error()}
	}
	defer resp.Body.Close()

	d.circuitBreaker.RecordSuccess()

	// Limit response body to 1MB
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		slog.Warn("Failed to read live dispatch response body", "error", err)
		return &LiveResult{Status: resp.StatusCode}
	}

	slog.Info("Live dispatch completed",
		"webhook_id", webhook.ID.Hex(),
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &LiveResult{
		Status: resp.StatusCode,
		Body:   decodeBody(respBytes),
	}
}

// decodeBody keeps JSON responses structured and falls back to a string
func decodeBody(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}
	return decoded
}
