// Package opendata implements the client and wire mappers for the Ghent
// open-data portal (data.stad.gent). It fetches whole collections per call
// and translates the portal's record format into domain entities;
// fetch-level failures are classified as network errors, per-record
// translation failures as mapping errors.
package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"gentcache/internal/domain/entity"
	"gentcache/internal/resilience/circuitbreaker"
	"gentcache/internal/resilience/retry"
)

// DefaultBaseURL is the catalog root of the portal's Explore v2.1 API.
const DefaultBaseURL = "https://data.stad.gent/api/explore/v2.1/catalog/datasets"

// Dataset paths and their fetch parameters. The portal caps page sizes, so
// each collection is fetched as a single bounded page in its canonical
// order.
const (
	articlesDataset       = "recente-nieuwsberichten-van-stadgent"
	carParksDataset       = "bezetting-parkeergarages-real-time"
	studyLocationsDataset = "bloklocaties-gent"

	articlesOrderBy       = "publicatiedatum DESC"
	carParksOrderBy       = "name"
	studyLocationsOrderBy = "titel"

	articlesLimit       = 20
	carParksLimit       = 20
	studyLocationsLimit = 100
)

// Config holds the client configuration.
type Config struct {
	// BaseURL overrides the portal root, used by tests
	BaseURL string

	// Timeout is the per-request timeout
	Timeout time.Duration

	// UserAgent identifies this client to the portal
	UserAgent string

	// RequestsPerSecond throttles outgoing requests
	RequestsPerSecond float64

	// Retry controls backoff on transient failures
	Retry retry.Config
}

// DefaultConfig returns the production client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           30 * time.Second,
		UserAgent:         "gentcache/1.0",
		RequestsPerSecond: 2,
		Retry:             retry.OpenDataConfig(),
	}
}

// Client fetches collections from the open-data portal. All requests share
// one rate limiter and one circuit breaker; the portal is a single upstream
// and fails as one.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

// NewClient creates a portal client from the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker:    circuitbreaker.New(circuitbreaker.OpenDataConfig()),
		retryCfg:   cfg.Retry,
	}
}

// FetchArticles retrieves the most recent news articles in publication-date
// descending order.
func (c *Client) FetchArticles(ctx context.Context) ([]*entity.Article, error) {
	records, err := fetchRecords[ArticleRecord](ctx, c, articlesDataset, articlesOrderBy, articlesLimit, "")
	if err != nil {
		return nil, fmt.Errorf("FetchArticles: %w", err)
	}
	return mapRecords(records, MapArticle)
}

// FetchCarParks retrieves the live car park occupancy snapshot in name
// order.
func (c *Client) FetchCarParks(ctx context.Context) ([]*entity.CarPark, error) {
	records, err := fetchRecords[CarParkRecord](ctx, c, carParksDataset, carParksOrderBy, carParksLimit, "")
	if err != nil {
		return nil, fmt.Errorf("FetchCarParks: %w", err)
	}
	return mapRecords(records, MapCarPark)
}

// FetchStudyLocations retrieves all study locations in title order.
func (c *Client) FetchStudyLocations(ctx context.Context) ([]*entity.StudyLocation, error) {
	records, err := fetchRecords[StudyLocationRecord](ctx, c, studyLocationsDataset, studyLocationsOrderBy, studyLocationsLimit, "")
	if err != nil {
		return nil, fmt.Errorf("FetchStudyLocations: %w", err)
	}
	return mapRecords(records, MapStudyLocation)
}

// SearchStudyLocations retrieves study locations whose title, label or
// address matches the term, using the portal's full-text search clause. An
// empty term is equivalent to FetchStudyLocations.
func (c *Client) SearchStudyLocations(ctx context.Context, term string) ([]*entity.StudyLocation, error) {
	var where string
	if term != "" {
		where = fmt.Sprintf("search(titel,label_1,adres,'%s')", escapeSearchTerm(term))
	}
	records, err := fetchRecords[StudyLocationRecord](ctx, c, studyLocationsDataset, studyLocationsOrderBy, studyLocationsLimit, where)
	if err != nil {
		return nil, fmt.Errorf("SearchStudyLocations: %w", err)
	}
	return mapRecords(records, MapStudyLocation)
}

// fetchRecords performs one records request through the rate limiter, the
// retry loop and the circuit breaker, and decodes the response envelope.
// Every failure up to and including envelope decoding is a network-class
// error.
func fetchRecords[R any](ctx context.Context, c *Client, dataset, orderBy string, limit int, where string) ([]R, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	query := url.Values{}
	query.Set("order_by", orderBy)
	query.Set("limit", fmt.Sprintf("%d", limit))
	if where != "" {
		query.Set("where", where)
	}
	endpoint := fmt.Sprintf("%s/%s/records?%s", c.baseURL, dataset, query.Encode())

	var envelope Envelope[R]
	err := retry.WithBackoff(ctx, c.retryCfg, func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.getJSON(ctx, endpoint, &envelope)
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %w", entity.ErrNetwork, dataset, err)
	}

	slog.Debug("fetched records",
		slog.String("dataset", dataset),
		slog.Int("total_count", envelope.TotalCount),
		slog.Int("results", len(envelope.Results)))
	return envelope.Results, nil
}

// getJSON performs a single GET and decodes the body into out. Non-2xx
// responses become HTTPErrors so the retry loop can classify them.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("GET %s", endpoint),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapRecords translates a fetched page record by record. The first bad
// record fails the whole page; a partial collection must never replace a
// complete cached one.
func mapRecords[R any, E any](records []R, mapRecord func(R) (*E, error)) ([]*E, error) {
	entities := make([]*E, 0, len(records))
	for _, rec := range records {
		e, err := mapRecord(rec)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// escapeSearchTerm doubles single quotes so user input cannot break out of
// the where-clause string literal.
func escapeSearchTerm(term string) string {
	out := make([]rune, 0, len(term))
	for _, r := range term {
		if r == '\'' {
			out = append(out, '\'')
		}
		out = append(out, r)
	}
	return string(out)
}
