package opendata_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gentcache/internal/domain/entity"
	"gentcache/internal/infra/opendata"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func geo(lon, lat float64) *opendata.GeoPoint {
	return &opendata.GeoPoint{Lon: lon, Lat: lat}
}

func TestMapArticle(t *testing.T) {
	t.Parallel()

	rec := opendata.ArticleRecord{
		Titel:           "Nieuwe fietsenstalling aan het Sint-Pietersstation",
		Publicatiedatum: "2025-11-03",
		Nieuwsbericht:   "https://stad.gent/nieuws/fietsenstalling",
		Inhoud: `<html><body>` +
			`<figure><picture>` +
			`<source srcset="https://stad.gent/img/stalling-1200.jpg 1200w, https://stad.gent/img/stalling-600.jpg 600w"/>` +
			`</picture></figure>` +
			`<p>De stad opent een nieuwe stalling.</p>` +
			`<p>   </p>` +
			`<p>Er is plaats voor 500 fietsen.</p>` +
			`</body></html>`,
	}

	article, err := opendata.MapArticle(rec)
	require.NoError(t, err)

	want := &entity.Article{
		Title:       "Nieuwe fietsenstalling aan het Sint-Pietersstation",
		Date:        time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
		ReadMoreURL: "https://stad.gent/nieuws/fietsenstalling",
		Content:     "De stad opent een nieuwe stalling.\n\nEr is plaats voor 500 fietsen.",
		ImageURL:    "https://stad.gent/img/stalling-1200.jpg",
	}
	if diff := cmp.Diff(want, article); diff != "" {
		t.Errorf("article mismatch (-want +got):\n%s", diff)
	}
}

func TestMapArticle_EmptyBodyIsAllowed(t *testing.T) {
	t.Parallel()

	article, err := opendata.MapArticle(opendata.ArticleRecord{
		Titel:           "Kort bericht",
		Publicatiedatum: "2025-06-15",
		Nieuwsbericht:   "https://stad.gent/nieuws/kort",
	})
	require.NoError(t, err)
	assert.Empty(t, article.Content)
	assert.Empty(t, article.ImageURL)
}

func TestMapArticle_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  opendata.ArticleRecord
	}{
		{
			name: "missing title",
			rec:  opendata.ArticleRecord{Publicatiedatum: "2025-06-15", Nieuwsbericht: "https://stad.gent/x"},
		},
		{
			name: "missing date",
			rec:  opendata.ArticleRecord{Titel: "X", Nieuwsbericht: "https://stad.gent/x"},
		},
		{
			name: "malformed date",
			rec:  opendata.ArticleRecord{Titel: "X", Publicatiedatum: "15/06/2025", Nieuwsbericht: "https://stad.gent/x"},
		},
		{
			name: "missing read-more url",
			rec:  opendata.ArticleRecord{Titel: "X", Publicatiedatum: "2025-06-15"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := opendata.MapArticle(tt.rec)
			assert.ErrorIs(t, err, entity.ErrMapping)
		})
	}
}

func validCarParkRecord() opendata.CarParkRecord {
	return opendata.CarParkRecord{
		Name:                "Vrijdagmarkt",
		LastUpdate:          "2025-11-03T14:25:00+01:00",
		TotalCapacity:       intPtr(595),
		AvailableCapacity:   intPtr(134),
		Description:         "? Ondergrondse parking in het centrum",
		Text:                strPtr("Hoogte beperkt tot 1.90m"),
		IsOpenNow:           intPtr(1),
		TemporaryClosed:     intPtr(0),
		FreeParking:         intPtr(0),
		OperatorInformation: "Mobiliteitsbedrijf Gent",
		Categorie:           "parking in LEZ",
		Location:            geo(3.726, 51.057),
	}
}

func TestMapCarPark(t *testing.T) {
	t.Parallel()

	park, err := opendata.MapCarPark(validCarParkRecord())
	require.NoError(t, err)

	want := &entity.CarPark{
		Name:              "Vrijdagmarkt",
		LastUpdate:        time.Date(2025, 11, 3, 13, 25, 0, 0, time.UTC),
		TotalCapacity:     595,
		AvailableCapacity: 134,
		Description:       "Ondergrondse parking in het centrum",
		ExtraInfo:         "Hoogte beperkt tot 1.90m",
		IsOpenNow:         true,
		IsTemporaryClosed: false,
		IsFree:            false,
		IsInLEZ:           true,
		Operator:          "Mobiliteitsbedrijf Gent",
		Location:          entity.GPSCoordinates{Longitude: 3.726, Latitude: 51.057},
	}
	if diff := cmp.Diff(want, park); diff != "" {
		t.Errorf("carpark mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, time.UTC, park.LastUpdate.Location())
}

func TestMapCarPark_OptionalFields(t *testing.T) {
	t.Parallel()

	rec := validCarParkRecord()
	rec.Text = nil
	rec.Categorie = "parking buiten centrum"
	rec.Description = "Parking zonder rommel vooraan"

	park, err := opendata.MapCarPark(rec)
	require.NoError(t, err)
	assert.Empty(t, park.ExtraInfo)
	assert.False(t, park.IsInLEZ)
	assert.Equal(t, "Parking zonder rommel vooraan", park.Description)
}

func TestMapCarPark_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*opendata.CarParkRecord)
	}{
		{"missing name", func(r *opendata.CarParkRecord) { r.Name = "" }},
		{"missing lastupdate", func(r *opendata.CarParkRecord) { r.LastUpdate = "" }},
		{"malformed lastupdate", func(r *opendata.CarParkRecord) { r.LastUpdate = "gisteren" }},
		{"missing total capacity", func(r *opendata.CarParkRecord) { r.TotalCapacity = nil }},
		{"missing available capacity", func(r *opendata.CarParkRecord) { r.AvailableCapacity = nil }},
		{"missing open flag", func(r *opendata.CarParkRecord) { r.IsOpenNow = nil }},
		{"missing operator", func(r *opendata.CarParkRecord) { r.OperatorInformation = "" }},
		{"missing location", func(r *opendata.CarParkRecord) { r.Location = nil }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := validCarParkRecord()
			tt.mutate(&rec)
			_, err := opendata.MapCarPark(rec)
			assert.ErrorIs(t, err, entity.ErrMapping)
		})
	}
}

func validStudyLocationRecord() opendata.StudyLocationRecord {
	return opendata.StudyLocationRecord{
		ID:                    int64Ptr(42),
		Titel:                 "Bibliotheek De Krook",
		Label:                 "Blokspot",
		Adres:                 "Miriam Makebaplein 1, 9000 Gent",
		TotaleCapaciteit:      intPtr(120),
		GereserveerdePlaatsen: intPtr(35),
		LeesMeer:              "https://stad.gent/bloklocaties/de-krook",
		TeaserImgURL:          "https://stad.gent/img/krook.jpg",
		GeoPunt:               geo(3.728, 51.049),
		Tag1:                  strPtr("Reserveren verplicht"),
		Tag2:                  strPtr("Nog plaatsen vrij"),
	}
}

func TestMapStudyLocation(t *testing.T) {
	t.Parallel()

	loc, err := opendata.MapStudyLocation(validStudyLocationRecord())
	require.NoError(t, err)

	want := &entity.StudyLocation{
		ID:             42,
		Title:          "Bibliotheek De Krook",
		Label:          "Blokspot",
		Address:        "Miriam Makebaplein 1, 9000 Gent",
		TotalCapacity:  120,
		ReservedAmount: 35,
		ReadMoreURL:    "https://stad.gent/bloklocaties/de-krook",
		ImageURL:       "https://stad.gent/img/krook.jpg",
		Location:       entity.GPSCoordinates{Longitude: 3.728, Latitude: 51.049},
		ReservationTag: "Reserveren verplicht",
		AvailableTag:   "Nog plaatsen vrij",
	}
	if diff := cmp.Diff(want, loc); diff != "" {
		t.Errorf("studylocation mismatch (-want +got):\n%s", diff)
	}
}

func TestMapStudyLocation_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*opendata.StudyLocationRecord)
	}{
		{"missing id", func(r *opendata.StudyLocationRecord) { r.ID = nil }},
		{"missing title", func(r *opendata.StudyLocationRecord) { r.Titel = "" }},
		{"missing address", func(r *opendata.StudyLocationRecord) { r.Adres = "" }},
		{"missing capacity", func(r *opendata.StudyLocationRecord) { r.TotaleCapaciteit = nil }},
		{"missing read-more url", func(r *opendata.StudyLocationRecord) { r.LeesMeer = "" }},
		{"missing geo point", func(r *opendata.StudyLocationRecord) { r.GeoPunt = nil }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := validStudyLocationRecord()
			tt.mutate(&rec)
			_, err := opendata.MapStudyLocation(rec)
			assert.ErrorIs(t, err, entity.ErrMapping)
		})
	}
}

func TestEncodeArticle_RoundTrip(t *testing.T) {
	t.Parallel()

	original := &entity.Article{
		Title:       "Zomerkermis op het Sint-Baafsplein",
		Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		ReadMoreURL: "https://stad.gent/nieuws/zomerkermis",
		Content:     "De kermis start op 1 juli.\n\nToegang is gratis.",
		ImageURL:    "https://stad.gent/img/kermis.jpg",
	}

	mapped, err := opendata.MapArticle(opendata.EncodeArticle(original))
	require.NoError(t, err)
	if diff := cmp.Diff(original, mapped); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeCarPark_RoundTrip(t *testing.T) {
	t.Parallel()

	original, err := opendata.MapCarPark(validCarParkRecord())
	require.NoError(t, err)

	mapped, err := opendata.MapCarPark(opendata.EncodeCarPark(original))
	require.NoError(t, err)
	if diff := cmp.Diff(original, mapped); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeStudyLocation_RoundTrip(t *testing.T) {
	t.Parallel()

	original, err := opendata.MapStudyLocation(validStudyLocationRecord())
	require.NoError(t, err)

	mapped, err := opendata.MapStudyLocation(opendata.EncodeStudyLocation(original))
	require.NoError(t, err)
	if diff := cmp.Diff(original, mapped); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
