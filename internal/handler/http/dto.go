package http

import (
	"time"

	"gentcache/internal/domain/entity"
)

// JSON shapes for the read API. Timestamps render as RFC 3339 in UTC.

type coordinatesJSON struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type articleJSON struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	ReadMoreURL string `json:"read_more_url"`
	Content     string `json:"content,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type carParkJSON struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	LastUpdate        string          `json:"last_update"`
	TotalCapacity     int             `json:"total_capacity"`
	AvailableCapacity int             `json:"available_capacity"`
	Description       string          `json:"description"`
	ExtraInfo         string          `json:"extra_info,omitempty"`
	IsOpenNow         bool            `json:"is_open_now"`
	IsTemporaryClosed bool            `json:"is_temporary_closed"`
	IsFree            bool            `json:"is_free"`
	IsInLEZ           bool            `json:"is_in_lez"`
	IsFull            bool            `json:"is_full"`
	IsAlmostFull      bool            `json:"is_almost_full"`
	Operator          string          `json:"operator"`
	Location          coordinatesJSON `json:"location"`
}

type studyLocationJSON struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Label          string          `json:"label"`
	Address        string          `json:"address"`
	TotalCapacity  int             `json:"total_capacity"`
	ReservedAmount int             `json:"reserved_amount"`
	ReadMoreURL    string          `json:"read_more_url"`
	ImageURL       string          `json:"image_url,omitempty"`
	Location       coordinatesJSON `json:"location"`
	ReservationTag string          `json:"reservation_tag,omitempty"`
	AvailableTag   string          `json:"available_tag,omitempty"`
}

type collectionJSON[T any] struct {
	TotalCount int `json:"total_count"`
	Results    []T `json:"results"`
}

func toCoordinatesJSON(c entity.GPSCoordinates) coordinatesJSON {
	return coordinatesJSON{Longitude: c.Longitude, Latitude: c.Latitude}
}

func toArticleJSON(a *entity.Article) articleJSON {
	return articleJSON{
		ID:          a.ID,
		Title:       a.Title,
		Date:        a.Date.UTC().Format(time.RFC3339),
		ReadMoreURL: a.ReadMoreURL,
		Content:     a.Content,
		ImageURL:    a.ImageURL,
	}
}

func toCarParkJSON(p *entity.CarPark) carParkJSON {
	return carParkJSON{
		ID:                p.ID,
		Name:              p.Name,
		LastUpdate:        p.LastUpdate.UTC().Format(time.RFC3339),
		TotalCapacity:     p.TotalCapacity,
		AvailableCapacity: p.AvailableCapacity,
		Description:       p.Description,
		ExtraInfo:         p.ExtraInfo,
		IsOpenNow:         p.IsOpenNow,
		IsTemporaryClosed: p.IsTemporaryClosed,
		IsFree:            p.IsFree,
		IsInLEZ:           p.IsInLEZ,
		IsFull:            p.IsFull(),
		IsAlmostFull:      p.IsAlmostFull(),
		Operator:          p.Operator,
		Location:          toCoordinatesJSON(p.Location),
	}
}

func toStudyLocationJSON(l *entity.StudyLocation) studyLocationJSON {
	return studyLocationJSON{
		ID:             l.ID,
		Title:          l.Title,
		Label:          l.Label,
		Address:        l.Address,
		TotalCapacity:  l.TotalCapacity,
		ReservedAmount: l.ReservedAmount,
		ReadMoreURL:    l.ReadMoreURL,
		ImageURL:       l.ImageURL,
		Location:       toCoordinatesJSON(l.Location),
		ReservationTag: l.ReservationTag,
		AvailableTag:   l.AvailableTag,
	}
}

func toCollectionJSON[E any, J any](items []E, convert func(E) J) collectionJSON[J] {
	results := make([]J, 0, len(items))
	for _, item := range items {
		results = append(results, convert(item))
	}
	return collectionJSON[J]{TotalCount: len(results), Results: results}
}
