package opendata_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gentcache/internal/domain/entity"
	"gentcache/internal/infra/opendata"
	"gentcache/internal/resilience/retry"
)

// fastRetry keeps test runs quick while still exercising the retry loop.
func fastRetry(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func testClient(t *testing.T, handler http.Handler) *opendata.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return opendata.NewClient(opendata.Config{
		BaseURL:           srv.URL,
		Timeout:           5 * time.Second,
		UserAgent:         "gentcache-test",
		RequestsPerSecond: 1000,
		Retry:             fastRetry(2),
	})
}

func writeEnvelope[R any](t *testing.T, w http.ResponseWriter, results []R) {
	t.Helper()
	err := json.NewEncoder(w).Encode(opendata.Envelope[R]{
		TotalCount: len(results),
		Results:    results,
	})
	require.NoError(t, err)
}

func TestClient_FetchCarParks(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bezetting-parkeergarages-real-time/records", r.URL.Path)
		assert.Equal(t, "name", r.URL.Query().Get("order_by"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		writeEnvelope(t, w, []opendata.CarParkRecord{validCarParkRecord()})
	}))

	parks, err := client.FetchCarParks(context.Background())
	require.NoError(t, err)
	require.Len(t, parks, 1)
	assert.Equal(t, "Vrijdagmarkt", parks[0].Name)
}

func TestClient_FetchArticles(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recente-nieuwsberichten-van-stadgent/records", r.URL.Path)
		assert.Equal(t, "publicatiedatum DESC", r.URL.Query().Get("order_by"))
		writeEnvelope(t, w, []opendata.ArticleRecord{{
			Titel:           "Nieuw fietspad",
			Publicatiedatum: "2025-10-01",
			Nieuwsbericht:   "https://stad.gent/nieuws/fietspad",
			Inhoud:          "<p>Het fietspad is open.</p>",
		}})
	}))

	articles, err := client.FetchArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Het fietspad is open.", articles[0].Content)
}

func TestClient_SearchStudyLocations(t *testing.T) {
	t.Parallel()

	var gotWhere atomic.Value
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWhere.Store(r.URL.Query().Get("where"))
		writeEnvelope(t, w, []opendata.StudyLocationRecord{validStudyLocationRecord()})
	}))

	locations, err := client.SearchStudyLocations(context.Background(), "Krook")
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "search(titel,label_1,adres,'Krook')", gotWhere.Load())

	// An empty term drops the where clause entirely.
	_, err = client.SearchStudyLocations(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", gotWhere.Load())
}

func TestClient_SearchEscapesQuotes(t *testing.T) {
	t.Parallel()

	var gotWhere atomic.Value
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWhere.Store(r.URL.Query().Get("where"))
		writeEnvelope(t, w, []opendata.StudyLocationRecord{})
	}))

	_, err := client.SearchStudyLocations(context.Background(), "'t Kofschip")
	require.NoError(t, err)
	assert.Equal(t, "search(titel,label_1,adres,'''t Kofschip')", gotWhere.Load())
}

func TestClient_ServerErrorIsNetworkError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))

	_, err := client.FetchCarParks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNetwork)
	// 5xx is retryable, so both configured attempts were spent.
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such dataset", http.StatusNotFound)
	}))

	_, err := client.FetchArticles(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MalformedEnvelopeIsNetworkError(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.FetchStudyLocations(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNetwork)
}

func TestClient_BadRecordIsMappingError(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := validCarParkRecord()
		rec.LastUpdate = "not-a-timestamp"
		writeEnvelope(t, w, []opendata.CarParkRecord{rec})
	}))

	_, err := client.FetchCarParks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrMapping)
	assert.NotErrorIs(t, err, entity.ErrNetwork)
}
