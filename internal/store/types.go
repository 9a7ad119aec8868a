package store

import "time"

// DefaultReadingLimit caps a readings query when the caller supplies no limit.
const DefaultReadingLimit = 200

// MaxReadingLimit is the largest caller-suppliable readings limit.
const MaxReadingLimit = 1000

// ReadingFilter narrows a readings query. Zero values mean "no constraint".
// Start and End bounds are inclusive.
type ReadingFilter struct {
	Metric string
	Start  *time.Time
	End    *time.Time
	Limit  int
}

// MetricStats holds population statistics for one metric group.
type MetricStats struct {
	Metric string  `json:"metric"`
	Count  int64   `json:"count"`
	Avg    float64 `json:"avg"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}
