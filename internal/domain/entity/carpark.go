package entity

import "time"

// almostFullThreshold is the number of remaining spots below which a car park
// counts as almost full.
const almostFullThreshold = 10

// CarPark represents a public car park with its live occupancy snapshot.
// Name is unique in the local store; re-inserting a park with a known name
// replaces the whole row so availability updates overwrite stale data.
type CarPark struct {
	ID                int64
	Name              string
	LastUpdate        time.Time
	TotalCapacity     int
	AvailableCapacity int
	Description       string
	ExtraInfo         string
	IsOpenNow         bool
	IsTemporaryClosed bool
	IsFree            bool
	IsInLEZ           bool
	Operator          string
	Location          GPSCoordinates
}

// IsFull reports whether no spots are left.
func (c *CarPark) IsFull() bool {
	return c.AvailableCapacity <= 0
}

// IsAlmostFull reports whether the park is running out of spots. A full park
// is also almost full.
func (c *CarPark) IsAlmostFull() bool {
	return c.AvailableCapacity <= almostFullThreshold
}
