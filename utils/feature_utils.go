package utils

import (
	"strings"
	"time"

	"salesapi/models"
)

// EncodeFeatures derives the regressor's feature row from an item, a store and a date.
// Identifiers are not validated: one without "_" yields itself for every derived column.
func EncodeFeatures(itemID, storeID string, d time.Time) models.FeatureRow {
	return models.FeatureRow{
		ItemID:    itemID,
		DeptID:    DeptID(itemID),
		CatID:     CatID(itemID),
		StoreID:   storeID,
		StateID:   StateID(storeID),
		Year:      d.Year(),
		Month:     int(d.Month()),
		DayOfWeek: DayOfWeek(d),
		DayOfYear: d.YearDay(),
	}
}

// DeptID returns everything before the last "_" of an item identifier.
func DeptID(itemID string) string {
	if i := strings.LastIndex(itemID, "_"); i >= 0 {
		return itemID[:i]
	}
	return itemID
}

// CatID returns everything before the first "_" of an item identifier.
func CatID(itemID string) string {
	return firstSegment(itemID)
}

// StateID returns the first "_"-delimited segment of a store identifier.
func StateID(storeID string) string {
	return firstSegment(storeID)
}

// DayOfWeek is zero-based with Monday = 0 and Sunday = 6.
func DayOfWeek(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func firstSegment(s string) string {
	before, _, _ := strings.Cut(s, "_")
	return before
}
