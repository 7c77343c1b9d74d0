package entity

import "time"

// OccupancyAlertKind classifies a car park occupancy transition.
type OccupancyAlertKind string

const (
	// OccupancyFull means the park crossed into the full range.
	OccupancyFull OccupancyAlertKind = "full"

	// OccupancyAlmostFull means the park crossed into the almost-full
	// range without being full.
	OccupancyAlmostFull OccupancyAlertKind = "almost_full"

	// OccupancyAvailable means the park left the almost-full range.
	OccupancyAvailable OccupancyAlertKind = "available"
)

// OccupancyAlert reports one car park crossing an occupancy threshold
// between two refreshes.
type OccupancyAlert struct {
	Kind       OccupancyAlertKind
	Park       *CarPark
	ObservedAt time.Time
}
