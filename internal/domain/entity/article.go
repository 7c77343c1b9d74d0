// Package entity defines the core domain entities for the Ghent open-data
// cache: news articles, car parks and study locations, along with the
// domain-level error taxonomy shared by the caching repositories.
package entity

import "time"

// Article represents a city news article. Content and ImageURL are derived
// from the HTML document embedded in the upstream record and may be absent.
// The (Title, Date) pair is unique in the local store.
type Article struct {
	ID          int64
	Title       string
	Date        time.Time
	ReadMoreURL string
	Content     string
	ImageURL    string
}
