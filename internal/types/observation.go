package types

import "time"

// Observation is one sweeper's sighting of one plot at one instant,
// already parsed and typed at the transport boundary. Immutable once
// created; the reconciler only accepts or discards whole observations.
type Observation struct {
	Identity      PlotIdentity
	State         PlotState // StateOwned or StateOpen
	Price         *int
	ObservedAt    time.Time
	SweeperID     int64
	OwnerName     string
	HasBuiltHouse bool
}
