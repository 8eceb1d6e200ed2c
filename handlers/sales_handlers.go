package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"salesapi/models"
	"salesapi/predictor"
	"salesapi/utils"
)

// PredictionObserver is told about every model call.
type PredictionObserver interface {
	ObservePrediction(model string, err error)
}

// SalesHandler serves the prediction routes from models built at startup.
type SalesHandler struct {
	regressor  predictor.Regressor
	forecaster predictor.Forecaster
	observer   PredictionObserver
}

// NewSalesHandler wires the handler to its models. observer may be nil.
func NewSalesHandler(regressor predictor.Regressor, forecaster predictor.Forecaster, observer PredictionObserver) *SalesHandler {
	return &SalesHandler{regressor: regressor, forecaster: forecaster, observer: observer}
}

// HandlePredictItemSales predicts sales of one item in one store on one date.
// The response is a JSON array holding a single number.
func (h *SalesHandler) HandlePredictItemSales(c *fiber.Ctx) error {
	itemID, err := requiredQuery(c, "item_id")
	if err != nil {
		return err
	}
	storeID, err := requiredQuery(c, "store_id")
	if err != nil {
		return err
	}
	d, err := dateQuery(c)
	if err != nil {
		return err
	}

	row := utils.EncodeFeatures(itemID, storeID, d)
	log.Debugf("📥 [SALES HANDLER] item=%s store=%s date=%s features=%+v", itemID, storeID, utils.FormatISODate(d), row)

	preds, err := h.regressor.Predict(c.UserContext(), []models.FeatureRow{row})
	if err == nil {
		err = predictor.CheckOutputLength(1, preds)
	}
	h.observe("regressor", err)
	if err != nil {
		return utils.PredictorFailure("regressor", err)
	}
	return c.JSON(preds)
}

// HandleNationalForecast forecasts national sales for the 7 days starting at date.
// The response maps each ISO date to its forecast, in date order.
func (h *SalesHandler) HandleNationalForecast(c *fiber.Ctx) error {
	d, err := dateQuery(c)
	if err != nil {
		return err
	}

	window := utils.ForecastWindow(d)
	if window[len(window)-1].Year() > utils.MaxYear {
		return utils.BadRequest("query parameter \"date\" leaves no 7-day window before year %d", utils.MaxYear+1)
	}
	preds, err := h.forecaster.Forecast(c.UserContext(), window)
	if err == nil {
		err = predictor.CheckOutputLength(len(window), preds)
	}
	h.observe("forecaster", err)
	if err != nil {
		return utils.PredictorFailure("forecaster", err)
	}

	forecast := make(models.NationalForecast, len(window))
	for i, day := range window {
		forecast[i] = models.ForecastPoint{Date: utils.FormatISODate(day), Value: preds[i]}
	}
	log.Debugf("📊 [SALES HANDLER] national forecast from %s: %d days", forecast[0].Date, len(forecast))
	return c.JSON(forecast)
}

func (h *SalesHandler) observe(model string, err error) {
	if err != nil {
		log.Warnf("⚠️ [SALES HANDLER] %s failed: %v", model, err)
	}
	if h.observer != nil {
		h.observer.ObservePrediction(model, err)
	}
}

func requiredQuery(c *fiber.Ctx, name string) (string, error) {
	v := c.Query(name)
	if v == "" {
		return "", utils.BadRequest("query parameter %q is required", name)
	}
	return v, nil
}

func dateQuery(c *fiber.Ctx) (time.Time, error) {
	raw, err := requiredQuery(c, "date")
	if err != nil {
		return time.Time{}, err
	}
	d, err := utils.ParseISODate(raw)
	if err != nil {
		return time.Time{}, utils.BadRequest("query parameter \"date\" must be a YYYY-MM-DD date")
	}
	return d, nil
}
