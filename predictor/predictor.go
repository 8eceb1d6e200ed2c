// Package predictor holds the model contracts the sales handlers depend on and
// the backends that satisfy them. Every backend is built once at startup and is
// read-only afterwards, so a single instance may serve concurrent requests.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesapi/models"
)

// ErrOutputLength is returned when a model answers with a different number of
// values than it was given rows.
var ErrOutputLength = errors.New("predictor returned wrong number of outputs")

// Regressor predicts per-item, per-store sales for a batch of feature rows.
type Regressor interface {
	Predict(ctx context.Context, rows []models.FeatureRow) ([]float64, error)
}

// Forecaster predicts national sales for a batch of dates.
type Forecaster interface {
	Forecast(ctx context.Context, dates []time.Time) ([]float64, error)
}

// Set bundles the two models served by the API.
type Set struct {
	Regressor  Regressor
	Forecaster Forecaster
	// Backend names where the models came from, for logging.
	Backend string
}

// CheckOutputLength verifies a model produced one value per input.
func CheckOutputLength(want int, got []float64) error {
	if len(got) != want {
		return fmt.Errorf("%w: want %d, got %d", ErrOutputLength, want, len(got))
	}
	return nil
}
