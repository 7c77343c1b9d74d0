package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gentcache/internal/domain/entity"
	"gentcache/internal/usecase/notify"
)

type fakeNotifyService struct {
	health []notify.ChannelHealthStatus
}

func (f *fakeNotifyService) NotifyOccupancy(ctx context.Context, alert *entity.OccupancyAlert) error {
	return nil
}

func (f *fakeNotifyService) GetChannelHealth() []notify.ChannelHealthStatus { return f.health }

func (f *fakeNotifyService) Shutdown(ctx context.Context) error { return nil }

func performHealthCheck(t *testing.T, handler *HealthHandler) (int, HealthResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthHandler_Healthy(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	code, body := performHealthCheck(t, &HealthHandler{DB: db, Version: "1.2.3"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
}

func TestHealthHandler_DatabaseDownIsUnhealthy(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(assert.AnError)

	code, body := performHealthCheck(t, &HealthHandler{DB: db})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "unhealthy", body.Checks["database"].Status)
}

func TestHealthHandler_MissingDatabaseIsUnhealthy(t *testing.T) {
	t.Parallel()

	code, body := performHealthCheck(t, &HealthHandler{})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Checks["database"].Status)
}

func TestHealthHandler_OpenCircuitBreakerDegradesButStaysHealthy(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	handler := &HealthHandler{
		DB: db,
		Notify: &fakeNotifyService{health: []notify.ChannelHealthStatus{
			{Name: "Slack", Enabled: true, CircuitBreakerOpen: true},
		}},
	}

	code, body := performHealthCheck(t, handler)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "degraded", body.Checks["notifications"].Status)
}
