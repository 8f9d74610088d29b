package types

import "time"

// Wire shapes for the HTTP layer. All timestamps are UTC and marshal as
// RFC 3339 / ISO-8601.

type WardPlotInfo struct {
	PlotNumber    int    `json:"plot_number"`
	IsOwned       bool   `json:"is_owned"`
	Price         *int   `json:"price,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`
	HasBuiltHouse bool   `json:"has_built_house,omitempty"`
}

type WardInfoRequest struct {
	WorldID    int            `json:"world_id"`
	DistrictID int            `json:"district_id"`
	WardNumber int            `json:"ward_number"`
	Timestamp  time.Time      `json:"server_timestamp"`
	Plots      []WardPlotInfo `json:"plots"`
}

// WardIngestResult summarizes what happened to each plot sighting in a
// ward report. Stale sightings are skipped silently per the ordering
// rule, so they are counted rather than surfaced as errors.
type WardIngestResult struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
	Rejected int `json:"rejected"`
}

type PlotSummary struct {
	WorldID      int        `json:"world_id"`
	DistrictID   int        `json:"district_id"`
	WardNumber   int        `json:"ward_number"`
	PlotNumber   int        `json:"plot_number"`
	Size         PlotSize   `json:"size"`
	KnownPrice   *int       `json:"known_price,omitempty"`
	LastUpdated  time.Time  `json:"last_updated_time"`
	EstOpenedMin *time.Time `json:"est_time_open_min,omitempty"`
	EstOpenedMax *time.Time `json:"est_time_open_max,omitempty"`
	EstNumDevals *int       `json:"est_num_devals,omitempty"`
}

type DistrictSummary struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	NumOpenPlots int           `json:"num_open_plots"`
	OldestPlot   *time.Time    `json:"oldest_plot_time,omitempty"`
	OpenPlots    []PlotSummary `json:"open_plots"`
}

type WorldSummary struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	NumOpenPlots int        `json:"num_open_plots"`
	OldestPlot   *time.Time `json:"oldest_plot_time,omitempty"`
}

type WorldDetail struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	NumOpenPlots int               `json:"num_open_plots"`
	OldestPlot   *time.Time        `json:"oldest_plot_time,omitempty"`
	Districts    []DistrictSummary `json:"districts"`
}

type RegisterRequest struct {
	SweeperID int64  `json:"sweeper_id"`
	Name      string `json:"name"`
	WorldID   int    `json:"world_id"`
	Secret    string `json:"secret"`
}

type RegisterResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
