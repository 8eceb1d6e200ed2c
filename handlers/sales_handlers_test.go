package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesapi/middleware"
	"salesapi/models"
)

type stubRegressor struct {
	rows  []models.FeatureRow
	preds []float64
	err   error
}

func (s *stubRegressor) Predict(_ context.Context, rows []models.FeatureRow) ([]float64, error) {
	s.rows = rows
	return s.preds, s.err
}

type stubForecaster struct {
	dates []time.Time
	err   error
	short bool
}

func (s *stubForecaster) Forecast(_ context.Context, dates []time.Time) ([]float64, error) {
	s.dates = dates
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(dates))
	for i := range dates {
		out[i] = 100 + float64(i)
	}
	if s.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObservePrediction(model string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	o.calls = append(o.calls, model+":"+outcome)
}

func newSalesApp(reg *stubRegressor, fc *stubForecaster, obs PredictionObserver) *fiber.App {
	h := NewSalesHandler(reg, fc, obs)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/sales/stores/item", h.HandlePredictItemSales)
	app.Get("/sales/national", h.HandleNationalForecast)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHandlePredictItemSales(t *testing.T) {
	reg := &stubRegressor{preds: []float64{3.75}}
	obs := &recordingObserver{}
	app := newSalesApp(reg, &stubForecaster{}, obs)

	status, body := get(t, app, "/sales/stores/item?item_id=HOBBIES_1_008&store_id=CA_1&date=2024-01-01")
	require.Equal(t, fiber.StatusOK, status)

	var preds []float64
	require.NoError(t, json.Unmarshal(body, &preds))
	assert.Equal(t, []float64{3.75}, preds)

	require.Len(t, reg.rows, 1)
	assert.Equal(t, models.FeatureRow{
		ItemID: "HOBBIES_1_008", DeptID: "HOBBIES_1", CatID: "HOBBIES",
		StoreID: "CA_1", StateID: "CA",
		Year: 2024, Month: 1, DayOfWeek: 0, DayOfYear: 1,
	}, reg.rows[0])
	assert.Equal(t, []string{"regressor:ok"}, obs.calls)
}

func TestHandlePredictItemSalesDegenerateIdentifiers(t *testing.T) {
	reg := &stubRegressor{preds: []float64{0}}
	app := newSalesApp(reg, &stubForecaster{}, nil)

	status, _ := get(t, app, "/sales/stores/item?item_id=HOBBIES&store_id=CA&date=2024-12-31")
	require.Equal(t, fiber.StatusOK, status)

	row := reg.rows[0]
	assert.Equal(t, "HOBBIES", row.DeptID)
	assert.Equal(t, "HOBBIES", row.CatID)
	assert.Equal(t, "CA", row.StateID)
	assert.Equal(t, 366, row.DayOfYear)
	assert.Equal(t, 1, row.DayOfWeek)
}

func TestHandlePredictItemSalesWhitespaceIdentifiers(t *testing.T) {
	reg := &stubRegressor{preds: []float64{2}}
	app := newSalesApp(reg, &stubForecaster{}, nil)

	status, body := get(t, app, "/sales/stores/item?item_id=%20&store_id=CA_1&date=2024-01-01")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[2]`, string(body))

	row := reg.rows[0]
	assert.Equal(t, " ", row.ItemID)
	assert.Equal(t, " ", row.DeptID)
	assert.Equal(t, " ", row.CatID)
}

func TestHandlePredictItemSalesBadRequests(t *testing.T) {
	targets := []string{
		"/sales/stores/item?item_id=HOBBIES_1_008&store_id=CA_1&date=not-a-date",
		"/sales/stores/item?item_id=HOBBIES_1_008&store_id=CA_1",
		"/sales/stores/item?item_id=HOBBIES_1_008&date=2024-01-01",
		"/sales/stores/item?store_id=CA_1&date=2024-01-01",
		"/sales/stores/item?item_id=&store_id=CA_1&date=2024-01-01",
		"/sales/stores/item?item_id=HOBBIES_1_008&store_id=CA_1&date=2024-02-30",
	}
	for _, target := range targets {
		reg := &stubRegressor{preds: []float64{1}}
		app := newSalesApp(reg, &stubForecaster{}, nil)

		status, body := get(t, app, target)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status, target)
		assert.Contains(t, string(body), `"status":"error"`, target)
		assert.Nil(t, reg.rows, "model must not be called for %s", target)
	}
}

func TestHandlePredictItemSalesPredictorFailure(t *testing.T) {
	obs := &recordingObserver{}
	app := newSalesApp(&stubRegressor{err: errors.New("unknown category value")}, &stubForecaster{}, obs)

	status, body := get(t, app, "/sales/stores/item?item_id=X_1_1&store_id=ZZ_9&date=2024-01-01")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, string(body), "unknown category value")
	assert.Equal(t, []string{"regressor:error"}, obs.calls)
}

func TestHandlePredictItemSalesWrongOutputLength(t *testing.T) {
	app := newSalesApp(&stubRegressor{preds: []float64{1, 2}}, &stubForecaster{}, nil)

	status, _ := get(t, app, "/sales/stores/item?item_id=A_1_1&store_id=CA_1&date=2024-01-01")
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestHandleNationalForecast(t *testing.T) {
	fc := &stubForecaster{}
	obs := &recordingObserver{}
	app := newSalesApp(&stubRegressor{}, fc, obs)

	status, body := get(t, app, "/sales/national?date=2024-02-27")
	require.Equal(t, fiber.StatusOK, status)

	want := `{"2024-02-27":100,"2024-02-28":101,"2024-02-29":102,"2024-03-01":103,"2024-03-02":104,"2024-03-03":105,"2024-03-04":106}`
	assert.JSONEq(t, want, string(body))
	assert.Equal(t, want, string(body), "keys must stay in date order")
	assert.Len(t, fc.dates, 7)
	assert.Equal(t, []string{"forecaster:ok"}, obs.calls)
}

func TestHandleNationalForecastBadDate(t *testing.T) {
	fc := &stubForecaster{}
	app := newSalesApp(&stubRegressor{}, fc, nil)

	for _, target := range []string{"/sales/national?date=not-a-date", "/sales/national", "/sales/national?date=2024-1-1"} {
		status, _ := get(t, app, target)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status, target)
	}
	assert.Nil(t, fc.dates)
}

func TestHandleNationalForecastWindowPastYear9999(t *testing.T) {
	fc := &stubForecaster{}
	app := newSalesApp(&stubRegressor{}, fc, nil)

	status, body := get(t, app, "/sales/national?date=9999-12-30")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.NotContains(t, string(body), "10000-")
	assert.Nil(t, fc.dates)

	status, body = get(t, app, "/sales/national?date=9999-12-25")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"9999-12-31":106`)
	assert.Len(t, fc.dates, 7)
}

func TestHandleNationalForecastPredictorFailure(t *testing.T) {
	for _, fc := range []*stubForecaster{{err: errors.New("stan exploded")}, {short: true}} {
		app := newSalesApp(&stubRegressor{}, fc, nil)
		status, body := get(t, app, "/sales/national?date=2024-01-01")
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Contains(t, string(body), "forecaster prediction failed")
	}
}
