package opendata

import (
	"fmt"

	"gentcache/internal/domain/entity"
)

// MapStudyLocation converts a wire study location into its domain form.
// Straight field renames; the id comes from the source and is never
// generated locally.
func MapStudyLocation(rec StudyLocationRecord) (*entity.StudyLocation, error) {
	if rec.ID == nil {
		return nil, fmt.Errorf("studylocation %q: missing id: %w", rec.Titel, entity.ErrMapping)
	}
	if rec.Titel == "" {
		return nil, fmt.Errorf("studylocation %d: missing titel: %w", *rec.ID, entity.ErrMapping)
	}
	if rec.Adres == "" {
		return nil, fmt.Errorf("studylocation %q: missing adres: %w", rec.Titel, entity.ErrMapping)
	}
	if rec.TotaleCapaciteit == nil || rec.GereserveerdePlaatsen == nil {
		return nil, fmt.Errorf("studylocation %q: missing capacity: %w", rec.Titel, entity.ErrMapping)
	}
	if rec.LeesMeer == "" {
		return nil, fmt.Errorf("studylocation %q: missing lees_meer: %w", rec.Titel, entity.ErrMapping)
	}
	if rec.GeoPunt == nil {
		return nil, fmt.Errorf("studylocation %q: missing geo_punt: %w", rec.Titel, entity.ErrMapping)
	}

	loc := &entity.StudyLocation{
		ID:             *rec.ID,
		Title:          rec.Titel,
		Label:          rec.Label,
		Address:        rec.Adres,
		TotalCapacity:  *rec.TotaleCapaciteit,
		ReservedAmount: *rec.GereserveerdePlaatsen,
		ReadMoreURL:    rec.LeesMeer,
		ImageURL:       rec.TeaserImgURL,
		Location:       entity.GPSCoordinates{Longitude: rec.GeoPunt.Lon, Latitude: rec.GeoPunt.Lat},
	}
	if rec.Tag1 != nil {
		loc.ReservationTag = *rec.Tag1
	}
	if rec.Tag2 != nil {
		loc.AvailableTag = *rec.Tag2
	}
	return loc, nil
}

// EncodeStudyLocation rebuilds the wire form of a study location for test
// fixtures.
func EncodeStudyLocation(loc *entity.StudyLocation) StudyLocationRecord {
	rec := StudyLocationRecord{
		ID:                    &loc.ID,
		Titel:                 loc.Title,
		Label:                 loc.Label,
		Adres:                 loc.Address,
		TotaleCapaciteit:      intPtr(loc.TotalCapacity),
		GereserveerdePlaatsen: intPtr(loc.ReservedAmount),
		LeesMeer:              loc.ReadMoreURL,
		TeaserImgURL:          loc.ImageURL,
		GeoPunt:               &GeoPoint{Lon: loc.Location.Longitude, Lat: loc.Location.Latitude},
	}
	if loc.ReservationTag != "" {
		rec.Tag1 = &loc.ReservationTag
	}
	if loc.AvailableTag != "" {
		rec.Tag2 = &loc.AvailableTag
	}
	return rec
}
