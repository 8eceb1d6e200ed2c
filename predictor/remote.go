package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"salesapi/models"
	"salesapi/utils"
)

// RemoteModel talks to a model server that hosts the trained models.
// Calls are not retried; a failure is the caller's failure.
//
// Each call is bounded by the configured timeout or the context deadline,
// whichever comes first. The underlying client cannot be interrupted, so a
// context cancelled without a deadline is only noticed before the call starts.
type RemoteModel struct {
	baseURL string
	timeout time.Duration
	client  *fiber.Client
}

type remoteRequest struct {
	Instances any `json:"instances"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
}

type dateInstance struct {
	DS string `json:"ds"`
}

// NewRemoteModel returns a client for the model server at baseURL.
func NewRemoteModel(baseURL string, timeout time.Duration) (*RemoteModel, error) {
	if baseURL == "" {
		return nil, errors.New("model server url is empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("model server url %q must start with http:// or https://", baseURL)
	}
	return &RemoteModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &fiber.Client{},
	}, nil
}

// Predict implements Regressor.
func (m *RemoteModel) Predict(ctx context.Context, rows []models.FeatureRow) ([]float64, error) {
	return m.post(ctx, "/predict/regressor", rows, len(rows))
}

// Forecast implements Forecaster.
func (m *RemoteModel) Forecast(ctx context.Context, dates []time.Time) ([]float64, error) {
	instances := make([]dateInstance, len(dates))
	for i, d := range dates {
		instances[i] = dateInstance{DS: utils.FormatISODate(d)}
	}
	return m.post(ctx, "/predict/forecaster", instances, len(dates))
}

// Ping checks the model server health endpoint.
func (m *RemoteModel) Ping(ctx context.Context) error {
	timeout, err := m.callTimeout(ctx)
	if err != nil {
		return err
	}
	a := m.client.Get(m.baseURL + "/health").Timeout(timeout)
	if err := a.Parse(); err != nil {
		return fmt.Errorf("model server health: %w", err)
	}
	code, _, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("model server health: %w", errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("model server health: status %d", code)
	}
	return nil
}

func (m *RemoteModel) post(ctx context.Context, path string, instances any, n int) ([]float64, error) {
	timeout, err := m.callTimeout(ctx)
	if err != nil {
		return nil, err
	}
	a := m.client.Post(m.baseURL + path).Timeout(timeout).JSON(remoteRequest{Instances: instances})
	if err := a.Parse(); err != nil {
		return nil, fmt.Errorf("model server %s: %w", path, err)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("model server %s: %w", path, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return nil, fmt.Errorf("model server %s: status %d: %s", path, code, truncate(string(body), 200))
	}
	var resp remoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("model server %s: decode response: %w", path, err)
	}
	if err := CheckOutputLength(n, resp.Predictions); err != nil {
		return nil, fmt.Errorf("model server %s: %w", path, err)
	}
	return resp.Predictions, nil
}

// callTimeout returns the time left for one call under ctx.
func (m *RemoteModel) callTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
