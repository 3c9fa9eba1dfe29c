package dto

import (
	"sort"
	"time"

	"wanderstay/internal/domain/availability"
)

type BlockedDates struct {
	PropertyID string      `json:"property_id"`
	From       time.Time   `json:"from"`
	To         time.Time   `json:"to"`
	Blocked    []time.Time `json:"blocked"`
}

func MapBlockedDates(propertyID string, from, to time.Time, set availability.BlockedDates) BlockedDates {
	dates := set.Dates()
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return BlockedDates{
		PropertyID: propertyID,
		From:       from,
		To:         to,
		Blocked:    dates,
	}
}
