package view

import (
	"time"
)

// Timeframe is a predefined date range for the ledger listing.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear

	timeframeCount
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "All Time"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	}

	return "Unknown"
}

// Next cycles through the timeframes.
func (t Timeframe) Next() Timeframe {
	return (t + 1) % timeframeCount
}

// DateRange returns the inclusive UTC calendar range of the timeframe
// relative to now. ok is false for TimeframeAll.
func (t Timeframe) DateRange(now time.Time) (start, end time.Time, ok bool) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch t {
	case TimeframeThisMonth:
		return first, first.AddDate(0, 1, -1), true
	case TimeframeLastMonth:
		prev := first.AddDate(0, -1, 0)
		return prev, first.AddDate(0, 0, -1), true
	case TimeframeThisYear:
		jan := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return jan, jan.AddDate(1, 0, -1), true
	}

	return time.Time{}, time.Time{}, false
}
