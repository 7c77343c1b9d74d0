package entity

// StudyLocation represents a bloklocatie: a public study spot opened during
// exam periods. The ID is assigned by the upstream source, never generated
// locally, and re-inserting a known ID replaces the whole row.
type StudyLocation struct {
	ID             int64
	Title          string
	Label          string
	Address        string
	TotalCapacity  int
	ReservedAmount int
	ReadMoreURL    string
	ImageURL       string
	Location       GPSCoordinates
	ReservationTag string
	AvailableTag   string
}
