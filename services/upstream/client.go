// Package upstream talks to the storage platform, the external system of
// record for reservations. The back-office engine treats its responses as
// authoritative.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stowage/config"
	"stowage/models"
)

// APIError is a non-2xx response from the storage platform.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storage platform returned %d: %s", e.StatusCode, e.Message)
}

// Conflict reports whether the platform rejected a mutation because the
// reservation is not in a state that accepts it, which includes the effect
// having already been applied by an earlier submission.
func (e *APIError) Conflict() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusConflict
}

// NotFound reports whether the platform had no reservation for the code.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Client defines the calls the engine makes against the storage platform.
type Client interface {
	Verify(ctx context.Context, code string) (*models.ReservationSnapshot, error)
	RecordHandover(ctx context.Context, reservationID string, req models.ActionRequest) (*models.ReservationSnapshot, error)
	RecordReturn(ctx context.Context, reservationID string, req models.ActionRequest) (*models.ReservationSnapshot, error)
}

// HTTPClient implements Client against the platform's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client from the loaded application config.
func NewHTTPClient() *HTTPClient {
	timeout := time.Duration(config.AppConfig.StorageAPITimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: config.AppConfig.StorageAPIBaseURL,
		apiKey:  config.AppConfig.StorageAPIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewHTTPClientWith builds a client with explicit settings. Used by tests
// and by deployments that configure the platform endpoint out of band.
func NewHTTPClientWith(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Verify resolves a code to the reservation's current snapshot. A code that
// matches nothing is a valid result: the platform answers 404 or a null
// reservationId, and both normalize to the synthetic not_found snapshot.
func (c *HTTPClient) Verify(ctx context.Context, code string) (*models.ReservationSnapshot, error) {
	body := map[string]string{"code": code}
	var snap models.ReservationSnapshot
	if err := c.postJSON(ctx, "/api/v1/reservations/verify", body, &snap); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.NotFound() {
			notFound := models.NotFoundSnapshot()
			return &notFound, nil
		}
		return nil, err
	}
	if !snap.Found() {
		snap.Status = models.StatusNotFound
	}
	return &snap, nil
}

// RecordHandover records the drop-off event for a reservation.
func (c *HTTPClient) RecordHandover(ctx context.Context, reservationID string, req models.ActionRequest) (*models.ReservationSnapshot, error) {
	path := fmt.Sprintf("/api/v1/reservations/%s/handover", reservationID)
	var snap models.ReservationSnapshot
	if err := c.postJSON(ctx, path, req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// RecordReturn records the pick-up event for a reservation.
func (c *HTTPClient) RecordReturn(ctx context.Context, reservationID string, req models.ActionRequest) (*models.ReservationSnapshot, error) {
	path := fmt.Sprintf("/api/v1/reservations/%s/return", reservationID)
	var snap models.ReservationSnapshot
	if err := c.postJSON(ctx, path, req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// postJSON sends a JSON POST and decodes a 2xx response into out. Non-2xx
// responses come back as *APIError with the platform's message when one
// can be read from the body.
func (c *HTTPClient) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request to storage platform failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode storage platform response: %w", err)
	}
	return nil
}

// readErrorMessage extracts the platform's error message, falling back to
// the raw body when it is not the usual {"error": ...} shape.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no error detail provided"
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return string(raw)
}
