package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// GPSCoordinates is a longitude/latitude value pair. It has no identity of
// its own; it is owned by whichever entity embeds it and is persisted as a
// single "<lon>,<lat>" text field.
type GPSCoordinates struct {
	Longitude float64
	Latitude  float64
}

// String renders the coordinates in the persisted "<lon>,<lat>" form.
func (g GPSCoordinates) String() string {
	return strconv.FormatFloat(g.Longitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(g.Latitude, 'f', -1, 64)
}

// ParseGPSCoordinates parses the persisted "<lon>,<lat>" form.
func ParseGPSCoordinates(s string) (GPSCoordinates, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return GPSCoordinates{}, fmt.Errorf("parse gps coordinates %q: missing separator", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return GPSCoordinates{}, fmt.Errorf("parse gps longitude %q: %w", lonStr, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return GPSCoordinates{}, fmt.Errorf("parse gps latitude %q: %w", latStr, err)
	}
	return GPSCoordinates{Longitude: lon, Latitude: lat}, nil
}
