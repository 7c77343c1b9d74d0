package opendata

import (
	"fmt"
	"strings"
	"time"

	"gentcache/internal/domain/entity"
)

// descriptionJunkPrefix is a known artifact in the upstream description
// field.
const descriptionJunkPrefix = "? "

// lezMarker is the substring of the free-text categorie field that flags a
// park inside the low-emission zone.
const lezMarker = "in LEZ"

// MapCarPark converts a wire car park into its domain form. lastupdate is an
// offset-aware timestamp and is normalized to UTC; the open/closed/free
// flags arrive as 0/1 integers.
func MapCarPark(rec CarParkRecord) (*entity.CarPark, error) {
	if rec.Name == "" {
		return nil, fmt.Errorf("carpark: missing name: %w", entity.ErrMapping)
	}
	if rec.LastUpdate == "" {
		return nil, fmt.Errorf("carpark %q: missing lastupdate: %w", rec.Name, entity.ErrMapping)
	}
	lastUpdate, err := time.Parse(time.RFC3339, rec.LastUpdate)
	if err != nil {
		return nil, fmt.Errorf("carpark %q: lastupdate %q: %w", rec.Name, rec.LastUpdate, entity.ErrMapping)
	}
	if rec.TotalCapacity == nil || rec.AvailableCapacity == nil {
		return nil, fmt.Errorf("carpark %q: missing capacity: %w", rec.Name, entity.ErrMapping)
	}
	if rec.IsOpenNow == nil || rec.TemporaryClosed == nil || rec.FreeParking == nil {
		return nil, fmt.Errorf("carpark %q: missing status flag: %w", rec.Name, entity.ErrMapping)
	}
	if rec.OperatorInformation == "" {
		return nil, fmt.Errorf("carpark %q: missing operatorinformation: %w", rec.Name, entity.ErrMapping)
	}
	if rec.Location == nil {
		return nil, fmt.Errorf("carpark %q: missing location: %w", rec.Name, entity.ErrMapping)
	}

	park := &entity.CarPark{
		Name:              rec.Name,
		LastUpdate:        lastUpdate.UTC(),
		TotalCapacity:     *rec.TotalCapacity,
		AvailableCapacity: *rec.AvailableCapacity,
		Description:       strings.TrimPrefix(rec.Description, descriptionJunkPrefix),
		IsOpenNow:         *rec.IsOpenNow != 0,
		IsTemporaryClosed: *rec.TemporaryClosed != 0,
		IsFree:            *rec.FreeParking != 0,
		IsInLEZ:           strings.Contains(rec.Categorie, lezMarker),
		Operator:          rec.OperatorInformation,
		Location:          entity.GPSCoordinates{Longitude: rec.Location.Lon, Latitude: rec.Location.Lat},
	}
	if rec.Text != nil {
		park.ExtraInfo = *rec.Text
	}
	return park, nil
}

// EncodeCarPark rebuilds the wire form of a car park for test fixtures.
func EncodeCarPark(park *entity.CarPark) CarParkRecord {
	boolFlag := func(b bool) *int {
		v := 0
		if b {
			v = 1
		}
		return &v
	}

	rec := CarParkRecord{
		Name:                park.Name,
		LastUpdate:          park.LastUpdate.UTC().Format(time.RFC3339),
		TotalCapacity:       intPtr(park.TotalCapacity),
		AvailableCapacity:   intPtr(park.AvailableCapacity),
		Description:         park.Description,
		IsOpenNow:           boolFlag(park.IsOpenNow),
		TemporaryClosed:     boolFlag(park.IsTemporaryClosed),
		FreeParking:         boolFlag(park.IsFree),
		OperatorInformation: park.Operator,
		Location:            &GeoPoint{Lon: park.Location.Longitude, Lat: park.Location.Latitude},
	}
	if park.IsInLEZ {
		rec.Categorie = "parking in LEZ"
	}
	if park.ExtraInfo != "" {
		rec.Text = &park.ExtraInfo
	}
	return rec
}

func intPtr(v int) *int { return &v }
