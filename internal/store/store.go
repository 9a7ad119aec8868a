package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agro-telemetry-backend/internal/errs"
	"agro-telemetry-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// AppendReading appends one reading. Duplicate content is retained.
	AppendReading(ctx context.Context, r *model.Reading) error
	// TouchMachine inserts the machine if absent, otherwise refreshes only
	// last_seen. The upsert is conflict-safe under concurrent writers.
	TouchMachine(ctx context.Context, id int64, name string, lastSeen time.Time, st string) error
	// RecordBatch appends one reading per metric and refreshes the machine's
	// last_seen in a single transaction. All or nothing.
	RecordBatch(ctx context.Context, machineID int64, values map[string]float64, ts time.Time) error
	// CreateMachine registers a machine explicitly.
	CreateMachine(ctx context.Context, name, st string, metadata datatypes.JSON) (*model.Machine, error)
	// ListMachines returns all machines sorted by id ascending.
	ListMachines(ctx context.Context) ([]model.Machine, error)
	// QueryReadings returns a machine's readings, newest first.
	QueryReadings(ctx context.Context, machineID int64, f ReadingFilter) ([]model.Reading, error)
	// AggregateReadings groups a machine's readings since the given instant by
	// metric and computes population statistics per group.
	AggregateReadings(ctx context.Context, machineID int64, since time.Time) ([]MetricStats, error)
	// DB exposes the underlying handle for collaborators that manage their own
	// queries (alert subscriptions).
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) AppendReading(ctx context.Context, r *model.Reading) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return &errs.StoreError{Op: "append reading", Err: err}
	}
	return nil
}

// machineUpsert resolves insert conflicts in the storage engine so two
// concurrent writers for the same id converge on a single row.
var machineUpsert = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	DoUpdates: clause.AssignmentColumns([]string{"last_seen", "updated_at"}),
}

func (s *gormStore) TouchMachine(ctx context.Context, id int64, name string, lastSeen time.Time, st string) error {
	machine := model.Machine{
		ID:       id,
		Name:     name,
		LastSeen: &lastSeen,
		Status:   st,
	}
	if err := s.db.WithContext(ctx).Clauses(machineUpsert).Create(&machine).Error; err != nil {
		return &errs.StoreError{Op: "upsert machine", Err: err}
	}
	return nil
}

func (s *gormStore) RecordBatch(ctx context.Context, machineID int64, values map[string]float64, ts time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for metric, value := range values {
			reading := model.Reading{
				MachineID: machineID,
				TS:        ts,
				Metric:    metric,
				Value:     value,
			}
			if err := tx.Create(&reading).Error; err != nil {
				return err
			}
		}

		machine := model.Machine{
			ID:       machineID,
			Name:     DefaultMachineName(machineID),
			LastSeen: &ts,
			Status:   "online",
		}
		return tx.Clauses(machineUpsert).Create(&machine).Error
	})
	if err != nil {
		return &errs.StoreError{Op: "record telemetry batch", Err: err}
	}
	return nil
}

func (s *gormStore) CreateMachine(ctx context.Context, name, st string, metadata datatypes.JSON) (*model.Machine, error) {
	if name == "" {
		return nil, errs.Validationf("machine name must not be empty")
	}
	machine := model.Machine{
		Name:     name,
		Status:   st,
		Metadata: metadata,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Bus ingestion inserts machines with explicit ids, which on postgres
		// leaves the id sequence behind max(id). Advance it before letting
		// the sequence assign, or this insert can collide.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(
				"SELECT setval(pg_get_serial_sequence('machines', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM machines), 1))",
			).Error; err != nil {
				return err
			}
		}
		return tx.Create(&machine).Error
	})
	if err != nil {
		return nil, &errs.StoreError{Op: "create machine", Err: err}
	}
	return &machine, nil
}

func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&machines).Error; err != nil {
		return nil, &errs.StoreError{Op: "list machines", Err: err}
	}
	return machines, nil
}

func (s *gormStore) QueryReadings(ctx context.Context, machineID int64, f ReadingFilter) ([]model.Reading, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultReadingLimit
	}

	q := s.db.WithContext(ctx).Where("machine_id = ?", machineID)
	if f.Metric != "" {
		q = q.Where("metric = ?", f.Metric)
	}
	if f.Start != nil {
		q = q.Where("ts >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("ts <= ?", *f.End)
	}

	var readings []model.Reading
	if err := q.Order("ts DESC, id DESC").Limit(limit).Find(&readings).Error; err != nil {
		return nil, &errs.StoreError{Op: "query readings", Err: err}
	}
	return readings, nil
}

// aggRow carries the per-metric SQL aggregates; the standard deviation is
// derived from the mean of squares so a single portable statement suffices.
type aggRow struct {
	Metric string
	Count  int64
	Avg    float64
	Min    float64
	Max    float64
	AvgSq  float64
}

func (s *gormStore) AggregateReadings(ctx context.Context, machineID int64, since time.Time) ([]MetricStats, error) {
	var rows []aggRow
	err := s.db.WithContext(ctx).
		Model(&model.Reading{}).
		Select("metric, COUNT(*) as count, AVG(value) as avg, MIN(value) as min, MAX(value) as max, AVG(value*value) as avg_sq").
		Where("machine_id = ? AND ts >= ?", machineID, since).
		Group("metric").
		Order("metric ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, &errs.StoreError{Op: "aggregate readings", Err: err}
	}

	stats := make([]MetricStats, 0, len(rows))
	for _, r := range rows {
		variance := r.AvgSq - r.Avg*r.Avg
		if variance < 0 {
			// Floating point noise on single-valued groups.
			variance = 0
		}
		stats = append(stats, MetricStats{
			Metric: r.Metric,
			Count:  r.Count,
			Avg:    r.Avg,
			Min:    r.Min,
			Max:    r.Max,
			StdDev: math.Sqrt(variance),
		})
	}
	return stats, nil
}

// DefaultMachineName is the auto-registration display name for machines first
// seen through telemetry.
func DefaultMachineName(id int64) string {
	return fmt.Sprintf("Machine %d", id)
}
