package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeatureColumns is the column schema of the per-item regressor, in order.
var FeatureColumns = []string{
	"item_id",
	"dept_id",
	"cat_id",
	"store_id",
	"state_id",
	"year",
	"month",
	"day_of_week",
	"day_of_year",
}

// FeatureRow is the derived record consumed by the per-item regressor.
// It is built fresh for every request and never stored.
type FeatureRow struct {
	ItemID    string `json:"item_id"`
	DeptID    string `json:"dept_id"`
	CatID     string `json:"cat_id"`
	StoreID   string `json:"store_id"`
	StateID   string `json:"state_id"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	DayOfWeek int    `json:"day_of_week"`
	DayOfYear int    `json:"day_of_year"`
}

// Categorical returns the value of a string column.
func (r FeatureRow) Categorical(column string) (string, bool) {
	switch column {
	case "item_id":
		return r.ItemID, true
	case "dept_id":
		return r.DeptID, true
	case "cat_id":
		return r.CatID, true
	case "store_id":
		return r.StoreID, true
	case "state_id":
		return r.StateID, true
	}
	return "", false
}

// Numeric returns the value of a calendar column.
func (r FeatureRow) Numeric(column string) (float64, bool) {
	switch column {
	case "year":
		return float64(r.Year), true
	case "month":
		return float64(r.Month), true
	case "day_of_week":
		return float64(r.DayOfWeek), true
	case "day_of_year":
		return float64(r.DayOfYear), true
	}
	return 0, false
}

// IsCategoricalColumn reports whether column holds string values.
func IsCategoricalColumn(column string) bool {
	_, ok := FeatureRow{}.Categorical(column)
	return ok
}

// IsNumericColumn reports whether column holds calendar values.
func IsNumericColumn(column string) bool {
	_, ok := FeatureRow{}.Numeric(column)
	return ok
}

// ForecastPoint is one day of the national forecast.
type ForecastPoint struct {
	Date  string  `json:"ds"`
	Value float64 `json:"yhat"`
}

// NationalForecast maps ISO dates to forecast values. It marshals as a JSON
// object whose keys keep the order of the points.
type NationalForecast []ForecastPoint

// MarshalJSON writes {"2024-01-01": 1.5, ...} preserving point order.
func (f NationalForecast) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Date)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("forecast value for %s: %w", p.Date, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
