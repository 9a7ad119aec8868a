package model

import (
	"time"

	"gorm.io/datatypes"
)

// Machine represents a registered field machine.
type Machine struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:256;not null" json:"name"`
	LastSeen  *time.Time     `json:"last_seen"`
	Status    string         `gorm:"size:64;not null" json:"status"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
}
