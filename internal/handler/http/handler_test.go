package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gentcache/internal/domain/entity"
	"gentcache/internal/result"
)

// fakeCarParkSource serves canned data and records refresh calls.
type fakeCarParkSource struct {
	parks      []*entity.CarPark
	listErr    error
	refreshErr error
	refreshed  int
}

func (f *fakeCarParkSource) GetAll(ctx context.Context) <-chan result.Result[[]*entity.CarPark] {
	ch := make(chan result.Result[[]*entity.CarPark], 2)
	ch <- result.Loading[[]*entity.CarPark]()
	ch <- result.Success(f.parks)
	close(ch)
	return ch
}

func (f *fakeCarParkSource) GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.CarPark] {
	ch := make(chan result.Result[*entity.CarPark], 2)
	ch <- result.Loading[*entity.CarPark]()
	for _, p := range f.parks {
		if p.ID == id {
			ch <- result.Success(p)
		}
	}
	close(ch)
	return ch
}

func (f *fakeCarParkSource) List(ctx context.Context) ([]*entity.CarPark, error) {
	return f.parks, f.listErr
}

func (f *fakeCarParkSource) Get(ctx context.Context, id int64) (*entity.CarPark, error) {
	for _, p := range f.parks {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeCarParkSource) Refresh(ctx context.Context) error {
	f.refreshed++
	return f.refreshErr
}

type fakeArticleSource struct {
	articles []*entity.Article
}

func (f *fakeArticleSource) GetAll(ctx context.Context) <-chan result.Result[[]*entity.Article] {
	ch := make(chan result.Result[[]*entity.Article], 2)
	ch <- result.Loading[[]*entity.Article]()
	ch <- result.Success(f.articles)
	close(ch)
	return ch
}

func (f *fakeArticleSource) GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.Article] {
	ch := make(chan result.Result[*entity.Article], 1)
	close(ch)
	return ch
}

func (f *fakeArticleSource) List(ctx context.Context) ([]*entity.Article, error) {
	return f.articles, nil
}

func (f *fakeArticleSource) Get(ctx context.Context, id int64) (*entity.Article, error) {
	for _, a := range f.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeArticleSource) Refresh(ctx context.Context) error { return nil }

type fakeStudyLocationSource struct {
	locations   []*entity.StudyLocation
	searchTerms []string
}

func (f *fakeStudyLocationSource) GetAll(ctx context.Context) <-chan result.Result[[]*entity.StudyLocation] {
	ch := make(chan result.Result[[]*entity.StudyLocation], 2)
	ch <- result.Loading[[]*entity.StudyLocation]()
	ch <- result.Success(f.locations)
	close(ch)
	return ch
}

func (f *fakeStudyLocationSource) GetByID(ctx context.Context, id int64) <-chan result.Result[*entity.StudyLocation] {
	ch := make(chan result.Result[*entity.StudyLocation], 1)
	close(ch)
	return ch
}

func (f *fakeStudyLocationSource) SearchByTerm(ctx context.Context, term string) <-chan result.Result[[]*entity.StudyLocation] {
	f.searchTerms = append(f.searchTerms, term)
	return f.GetAll(ctx)
}

func (f *fakeStudyLocationSource) List(ctx context.Context) ([]*entity.StudyLocation, error) {
	return f.locations, nil
}

func (f *fakeStudyLocationSource) Get(ctx context.Context, id int64) (*entity.StudyLocation, error) {
	for _, l := range f.locations {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeStudyLocationSource) Search(ctx context.Context, term string) ([]*entity.StudyLocation, error) {
	f.searchTerms = append(f.searchTerms, term)
	matched := make([]*entity.StudyLocation, 0)
	for _, l := range f.locations {
		if strings.Contains(strings.ToLower(l.Title), strings.ToLower(term)) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

func (f *fakeStudyLocationSource) Refresh(ctx context.Context) error { return nil }

func testRouter(carParks *fakeCarParkSource, articles *fakeArticleSource, locations *fakeStudyLocationSource) http.Handler {
	return NewRouter(RouterDeps{
		Logger:         slog.Default(),
		Articles:       articles,
		CarParks:       carParks,
		StudyLocations: locations,
	})
}

func openPark(id int64, name string) *entity.CarPark {
	return &entity.CarPark{
		ID:                id,
		Name:              name,
		LastUpdate:        time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		TotalCapacity:     500,
		AvailableCapacity: 120,
		IsOpenNow:         true,
		Operator:          "Mobiliteitsbedrijf Gent",
	}
}

func TestCarParkList(t *testing.T) {
	t.Parallel()

	source := &fakeCarParkSource{parks: []*entity.CarPark{openPark(1, "Vrijdagmarkt"), openPark(2, "Ramen")}}
	router := testRouter(source, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/carparks/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body collectionJSON[carParkJSON]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, "Vrijdagmarkt", body.Results[0].Name)
	assert.Equal(t, "2024-03-15T09:00:00Z", body.Results[0].LastUpdate)
}

func TestCarParkList_OnlyOpenFilter(t *testing.T) {
	t.Parallel()

	closed := openPark(2, "Ramen")
	closed.IsOpenNow = false
	suspended := openPark(3, "Reep")
	suspended.IsTemporaryClosed = true

	source := &fakeCarParkSource{parks: []*entity.CarPark{openPark(1, "Vrijdagmarkt"), closed, suspended}}
	router := testRouter(source, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/carparks/?only_open=true", nil))

	var body collectionJSON[carParkJSON]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.TotalCount)
	assert.Equal(t, "Vrijdagmarkt", body.Results[0].Name)
}

func TestCarParkGet(t *testing.T) {
	t.Parallel()

	source := &fakeCarParkSource{parks: []*entity.CarPark{openPark(7, "Vrijdagmarkt")}}
	router := testRouter(source, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/carparks/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body carParkJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Vrijdagmarkt", body.Name)
	assert.False(t, body.IsFull)
}

func TestCarParkGet_AbsentIs404(t *testing.T) {
	t.Parallel()

	router := testRouter(&fakeCarParkSource{}, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/carparks/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCarParkGet_BadID(t *testing.T) {
	t.Parallel()

	router := testRouter(&fakeCarParkSource{}, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/carparks/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCarParkRefresh_SurfacesUpstreamError(t *testing.T) {
	t.Parallel()

	source := &fakeCarParkSource{
		refreshErr: fmt.Errorf("%w: dataset x: connection refused", entity.ErrNetwork),
	}
	router := testRouter(source, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/carparks/refresh", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1, source.refreshed)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestCarParkRefresh_Success(t *testing.T) {
	t.Parallel()

	source := &fakeCarParkSource{}
	router := testRouter(source, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/carparks/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, source.refreshed)
}

func TestStudyLocationList_SearchTerm(t *testing.T) {
	t.Parallel()

	source := &fakeStudyLocationSource{locations: []*entity.StudyLocation{
		{ID: 1, Title: "De Krook"},
		{ID: 2, Title: "Therminal"},
	}}
	router := testRouter(&fakeCarParkSource{}, &fakeArticleSource{}, source)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/studylocations/?q=krook", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body collectionJSON[studyLocationJSON]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.TotalCount)
	assert.Equal(t, "De Krook", body.Results[0].Title)
	assert.Equal(t, []string{"krook"}, source.searchTerms)
}

func TestArticleWatch_StreamsResultStates(t *testing.T) {
	t.Parallel()

	source := &fakeArticleSource{articles: []*entity.Article{
		{ID: 1, Title: "Nieuw fietspad", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}
	router := testRouter(&fakeCarParkSource{}, source, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/watch", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSEEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "loading", events[0].State)
	assert.Equal(t, "success", events[1].State)
}

func TestCarParkWatchOne_EmitsOnlyWhenPresent(t *testing.T) {
	t.Parallel()

	source := &fakeCarParkSource{parks: []*entity.CarPark{openPark(5, "Vrijdagmarkt")}}
	router := testRouter(source, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/carparks/99/watch", nil))

	events := parseSSEEvents(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, "loading", events[0].State)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	router := testRouter(&fakeCarParkSource{}, &fakeArticleSource{}, &fakeStudyLocationSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func parseSSEEvents(t *testing.T, body string) []sseEvent {
	t.Helper()

	var events []sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event sseEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		events = append(events, event)
	}
	return events
}
