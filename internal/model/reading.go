package model

import "time"

// Metric names accepted by the write API. The bus path deliberately does not
// enforce this set; see internal/codec.
const (
	MetricVibration   = "vibration"
	MetricOilLevel    = "oil_level"
	MetricTemperature = "temperature"
	MetricPressure    = "pressure"
	MetricRPM         = "rpm"
)

// ValidMetrics lists the closed metric set in a stable order for error messages.
var ValidMetrics = []string{
	MetricVibration,
	MetricOilLevel,
	MetricTemperature,
	MetricPressure,
	MetricRPM,
}

// IsValidMetric reports whether name belongs to the closed metric set.
func IsValidMetric(name string) bool {
	for _, m := range ValidMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// Reading is one immutable sensor fact. Readings are append-only; there is no
// uniqueness constraint, so duplicate deliveries produce duplicate rows.
type Reading struct {
	ID        int64     `gorm:"autoIncrement;primaryKey" json:"-"`
	MachineID int64     `gorm:"index:idx_readings_machine_ts,priority:1;not null" json:"machine_id"`
	TS        time.Time `gorm:"index:idx_readings_machine_ts,priority:2;not null" json:"ts"`
	Metric    string    `gorm:"size:64;not null" json:"metric"`
	Value     float64   `gorm:"not null" json:"value"`
}

// TableName keeps the historical relation name.
func (Reading) TableName() string { return "sensor_readings" }
