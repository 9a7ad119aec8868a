// Package engine serves the validated query and write operations over the
// reading store and machine registry.
package engine

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"agro-telemetry-backend/internal/errs"
	"agro-telemetry-backend/internal/model"
	"agro-telemetry-backend/internal/status"
	"agro-telemetry-backend/internal/store"
)

// DefaultAnalyticsPeriod is the trailing window used when the caller supplies
// no period.
const DefaultAnalyticsPeriod = 24 * time.Hour

// Engine composes the store with read-time status derivation. All validation
// happens before any store access; a validation failure produces zero store
// queries.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// New creates an engine over the given store.
func New(s store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// MachineStatus is a machine row joined with its derived liveness tier.
type MachineStatus struct {
	model.Machine
	ComputedStatus status.Tier `json:"computed_status"`
}

// ListMachines returns all machines with their liveness derived against the
// current time.
func (e *Engine) ListMachines(ctx context.Context) ([]MachineStatus, error) {
	machines, err := e.store.ListMachines(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	out := make([]MachineStatus, 0, len(machines))
	for _, m := range machines {
		out = append(out, MachineStatus{
			Machine:        m,
			ComputedStatus: status.Derive(m.LastSeen, now),
		})
	}
	return out, nil
}

// ReadingQuery carries the raw caller-supplied filter parameters.
type ReadingQuery struct {
	Metric    string
	StartDate string
	EndDate   string
	Limit     string
}

// GetReadings validates the query parameters and returns the machine's
// readings, newest first. Invalid parameters fail, they are never clamped.
func (e *Engine) GetReadings(ctx context.Context, machineID string, q ReadingQuery) ([]model.Reading, error) {
	id, err := parseMachineID(machineID)
	if err != nil {
		return nil, err
	}

	filter := store.ReadingFilter{Metric: q.Metric}

	if q.Limit != "" {
		limit, err := strconv.Atoi(q.Limit)
		if err != nil || limit < 1 || limit > store.MaxReadingLimit {
			return nil, errs.Validationf("Limit must be a number between 1 and %d", store.MaxReadingLimit)
		}
		filter.Limit = limit
	}

	if q.StartDate != "" {
		start, err := parseTimestamp(q.StartDate)
		if err != nil {
			return nil, errs.Validationf("Invalid startDate format. Use ISO 8601 format.")
		}
		filter.Start = &start
	}
	if q.EndDate != "" {
		end, err := parseTimestamp(q.EndDate)
		if err != nil {
			return nil, errs.Validationf("Invalid endDate format. Use ISO 8601 format.")
		}
		filter.End = &end
	}
	if filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End) {
		return nil, errs.Validationf("startDate cannot be after endDate")
	}

	return e.store.QueryReadings(ctx, id, filter)
}

// AnalyticsResult is the per-metric aggregate response for one machine.
type AnalyticsResult struct {
	MachineID int64               `json:"machine_id"`
	Period    string              `json:"period"`
	Metrics   []store.MetricStats `json:"metrics"`
}

// GetAnalytics aggregates the machine's readings over the trailing period
// (default 24h). Metrics never reported inside the window are omitted.
func (e *Engine) GetAnalytics(ctx context.Context, machineID, period string) (*AnalyticsResult, error) {
	id, err := parseMachineID(machineID)
	if err != nil {
		return nil, err
	}

	window := DefaultAnalyticsPeriod
	echo := "24h"
	if period != "" {
		window, err = parsePeriod(period)
		if err != nil {
			return nil, err
		}
		echo = period
	}

	stats, err := e.store.AggregateReadings(ctx, id, e.now().Add(-window))
	if err != nil {
		return nil, err
	}

	return &AnalyticsResult{MachineID: id, Period: echo, Metrics: stats}, nil
}

// RecordTelemetry validates and applies an authenticated telemetry write: one
// reading per metric, all sharing the submission timestamp. Any invalid
// metric or value fails the whole batch before anything is written.
func (e *Engine) RecordTelemetry(ctx context.Context, machineID int64, metrics map[string]any) error {
	if machineID < 1 {
		return errs.Validationf("Valid machine_id (positive number) is required")
	}
	if len(metrics) == 0 {
		return errs.Validationf("At least one metric must be provided")
	}

	values := make(map[string]float64, len(metrics))
	for _, metric := range model.ValidMetrics {
		raw, ok := metrics[metric]
		if !ok {
			continue
		}
		value, ok := raw.(float64)
		if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
			return errs.Validationf("Invalid value for metric %s. Must be a number.", metric)
		}
		values[metric] = value
	}

	if len(values) != len(metrics) {
		for metric := range metrics {
			if !model.IsValidMetric(metric) {
				return errs.Validationf("Invalid metric: %s. Valid metrics: %s",
					metric, strings.Join(model.ValidMetrics, ", "))
			}
		}
	}

	return e.store.RecordBatch(ctx, machineID, values, e.now().UTC())
}

// CreateMachine registers a machine explicitly. The caller's admin role is
// enforced upstream; this validates the row itself.
func (e *Engine) CreateMachine(ctx context.Context, name, st string, metadata datatypes.JSON) (*model.Machine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validationf("Machine name is required")
	}
	if st == "" {
		st = "unknown"
	}
	return e.store.CreateMachine(ctx, name, st, metadata)
}

func parseMachineID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.Validationf("Invalid machine ID. Must be a valid number.")
	}
	return id, nil
}

// parseTimestamp accepts RFC 3339 and bare dates.
func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}

// parsePeriod accepts Go duration strings ("24h", "90m") and bare hour counts.
func parsePeriod(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d, nil
	}
	if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
		return time.Duration(hours) * time.Hour, nil
	}
	return 0, errs.Validationf("Invalid period. Use a duration such as 24h.")
}
