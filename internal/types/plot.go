package types

import "time"

type PlotState string

const (
	StateUnknown PlotState = "unknown"
	StateOwned   PlotState = "owned"
	StateOpen    PlotState = "open"
	StateSold    PlotState = "sold"
)

// Plot is the live per-slot aggregate built from sweeper observations.
// The estimate fields are only meaningful while State is open; every
// transition out of open clears them.
type Plot struct {
	WorldID    int `gorm:"primaryKey;autoIncrement:false;column:world_id" json:"world_id"`
	DistrictID int `gorm:"primaryKey;autoIncrement:false;column:district_id" json:"district_id"`
	WardNumber int `gorm:"primaryKey;autoIncrement:false;column:ward_number" json:"ward_number"`
	PlotNumber int `gorm:"primaryKey;autoIncrement:false;column:plot_number" json:"plot_number"`

	State PlotState `gorm:"not null;default:unknown;column:state" json:"state"`

	// LastSeen is the timestamp of the most recent accepted observation,
	// regardless of what it reported.
	LastSeen time.Time `gorm:"column:last_seen" json:"last_seen"`

	// LastOwnedAt is the most recent owned sighting preceding the current
	// open run, nil if the plot has never been seen owned.
	LastOwnedAt *time.Time `gorm:"column:last_owned_at" json:"last_owned_at,omitempty"`

	KnownPrice   *int       `gorm:"column:known_price" json:"known_price,omitempty"`
	EstNumDevals *int       `gorm:"column:est_num_devals" json:"est_num_devals,omitempty"`
	EstOpenedMin *time.Time `gorm:"column:est_opened_min" json:"est_time_open_min,omitempty"`
	EstOpenedMax *time.Time `gorm:"column:est_opened_max" json:"est_time_open_max,omitempty"`

	// LowConfidence marks records whose open window collapsed because the
	// deval schedule and the last-owned timestamp disagreed.
	LowConfidence bool `gorm:"column:low_confidence" json:"low_confidence"`

	OwnerName     string `gorm:"column:owner_name" json:"owner_name,omitempty"`
	HasBuiltHouse bool   `gorm:"column:has_built_house" json:"has_built_house"`

	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Plot) TableName() string { return "plots" }

func (p *Plot) Identity() PlotIdentity {
	return PlotIdentity{
		WorldID:    p.WorldID,
		DistrictID: p.DistrictID,
		WardNumber: p.WardNumber,
		PlotNumber: p.PlotNumber,
	}
}

func NewPlot(id PlotIdentity) *Plot {
	return &Plot{
		WorldID:    id.WorldID,
		DistrictID: id.DistrictID,
		WardNumber: id.WardNumber,
		PlotNumber: id.PlotNumber,
		State:      StateUnknown,
	}
}

// ClearOpenFields drops everything that only describes an open run.
func (p *Plot) ClearOpenFields() {
	p.KnownPrice = nil
	p.EstNumDevals = nil
	p.EstOpenedMin = nil
	p.EstOpenedMax = nil
	p.LowConfidence = false
}
