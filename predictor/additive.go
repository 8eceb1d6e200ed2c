package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// KindAdditive identifies a forecaster artifact.
const KindAdditive = "additive"

// Seasonality modes.
const (
	ModeAdditive       = "additive"
	ModeMultiplicative = "multiplicative"
)

// Trend is a piecewise-linear growth curve in scaled time. The slope changes
// by Deltas[i] from Changepoints[i] onwards, keeping the curve continuous.
type Trend struct {
	K            float64   `json:"k"`
	M            float64   `json:"m"`
	Changepoints []float64 `json:"changepoints"`
	Deltas       []float64 `json:"deltas"`
}

// Seasonality is a Fourier series over a fixed period. Beta holds a sin and a
// cos coefficient per order, interleaved.
type Seasonality struct {
	Name         string    `json:"name"`
	PeriodDays   float64   `json:"period_days"`
	FourierOrder int       `json:"fourier_order"`
	Beta         []float64 `json:"beta"`
	Mode         string    `json:"mode"`
}

type additiveArtifact struct {
	Kind          string        `json:"kind"`
	Start         string        `json:"start"`
	TScaleDays    float64       `json:"t_scale_days"`
	YScale        float64       `json:"y_scale"`
	Trend         Trend         `json:"trend"`
	Seasonalities []Seasonality `json:"seasonalities"`
}

// AdditiveForecaster evaluates a fitted decomposable time-series model:
// yhat = trend * (1 + multiplicative) + additive.
type AdditiveForecaster struct {
	start         time.Time
	tScaleDays    float64
	yScale        float64
	trend         Trend
	seasonalities []Seasonality
}

// ReadAdditiveForecaster decodes an additive JSON artifact.
func ReadAdditiveForecaster(r io.Reader) (*AdditiveForecaster, error) {
	var a additiveArtifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode forecaster artifact: %w", err)
	}
	if a.Kind != KindAdditive {
		return nil, fmt.Errorf("forecaster artifact kind %q, want %q", a.Kind, KindAdditive)
	}
	start, err := time.ParseInLocation(time.DateOnly, a.Start, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("forecaster artifact start: %w", err)
	}
	if a.TScaleDays <= 0 {
		return nil, errors.New("forecaster artifact t_scale_days must be positive")
	}
	if a.YScale == 0 {
		a.YScale = 1
	}
	if len(a.Trend.Changepoints) != len(a.Trend.Deltas) {
		return nil, fmt.Errorf("trend has %d changepoints but %d deltas", len(a.Trend.Changepoints), len(a.Trend.Deltas))
	}
	for i := range a.Seasonalities {
		s := &a.Seasonalities[i]
		if s.PeriodDays <= 0 {
			return nil, fmt.Errorf("seasonality %q: period_days must be positive", s.Name)
		}
		if len(s.Beta) != 2*s.FourierOrder {
			return nil, fmt.Errorf("seasonality %q: order %d needs %d coefficients, got %d", s.Name, s.FourierOrder, 2*s.FourierOrder, len(s.Beta))
		}
		switch s.Mode {
		case "":
			s.Mode = ModeAdditive
		case ModeAdditive, ModeMultiplicative:
		default:
			return nil, fmt.Errorf("seasonality %q: unknown mode %q", s.Name, s.Mode)
		}
	}
	return &AdditiveForecaster{
		start:         start,
		tScaleDays:    a.TScaleDays,
		yScale:        a.YScale,
		trend:         a.Trend,
		seasonalities: a.Seasonalities,
	}, nil
}

// Forecast implements Forecaster.
func (f *AdditiveForecaster) Forecast(ctx context.Context, dates []time.Time) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(dates))
	for i, ds := range dates {
		out[i] = f.predictDate(ds)
	}
	return out, nil
}

func (f *AdditiveForecaster) predictDate(ds time.Time) float64 {
	t := float64(ds.Unix()-f.start.Unix()) / 86400 / f.tScaleDays
	trend := f.trend.at(t) * f.yScale

	epochDays := float64(ds.Unix()) / 86400
	var add, mult float64
	for _, s := range f.seasonalities {
		v := s.at(epochDays)
		if s.Mode == ModeMultiplicative {
			mult += v
		} else {
			add += v * f.yScale
		}
	}
	return trend*(1+mult) + add
}

func (tr Trend) at(t float64) float64 {
	k, m := tr.K, tr.M
	for i, cp := range tr.Changepoints {
		if t >= cp {
			k += tr.Deltas[i]
			m -= cp * tr.Deltas[i]
		}
	}
	return k*t + m
}

func (s Seasonality) at(epochDays float64) float64 {
	var v float64
	for i := 0; i < s.FourierOrder; i++ {
		x := 2 * math.Pi * float64(i+1) * epochDays / s.PeriodDays
		v += s.Beta[2*i]*math.Sin(x) + s.Beta[2*i+1]*math.Cos(x)
	}
	return v
}
