package types

import (
	"time"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventHousingWardInfo EventType = "HOUSING_WARD_INFO"
)

// Event archives every raw ingested payload for later analysis
// (ownership graphs, relocation chains, sweeper data quality).
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SweeperID *int64         `gorm:"index;column:sweeper_id" json:"sweeper_id,omitempty"`
	Timestamp time.Time      `gorm:"index;column:timestamp" json:"timestamp"`
	Type      EventType      `gorm:"index;column:event_type" json:"event_type"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
}

func (Event) TableName() string { return "events" }

// WardSweep records one ward-level report from one sweeper.
type WardSweep struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SweeperID  *int64    `gorm:"index;column:sweeper_id" json:"sweeper_id,omitempty"`
	WorldID    int       `gorm:"column:world_id" json:"world_id"`
	DistrictID int       `gorm:"column:district_id" json:"district_id"`
	WardNumber int       `gorm:"column:ward_number" json:"ward_number"`
	Timestamp  time.Time `gorm:"column:timestamp" json:"timestamp"`
	EventID    uint      `gorm:"index;column:event_id" json:"event_id"`
}

func (WardSweep) TableName() string { return "ward_sweeps" }
