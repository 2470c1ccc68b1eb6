package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/transit-go/internal/alerts"
	"github.com/jusunglee/transit-go/internal/departures"
	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/pkg/transit"
)

// mockClient implements transit.Client for testing the HTTP layer in
// isolation from the engines it wraps.
type mockClient struct {
	stations    []*models.Stop
	departures  []models.Departure
	alerts      []models.Alert
	departErr   error
	gotFilter   transit.StationFilter
	gotOpts     departures.Options
	gotAlertOpt alerts.Filter
}

func (m *mockClient) Stations(filter transit.StationFilter) ([]*models.Stop, error) {
	m.gotFilter = filter
	return m.stations, nil
}

func (m *mockClient) Departures(ctx context.Context, stationID string, opts departures.Options) ([]models.Departure, error) {
	m.gotOpts = opts
	if m.departErr != nil {
		return nil, m.departErr
	}
	return m.departures, nil
}

func (m *mockClient) Alerts(ctx context.Context, filter alerts.Filter) ([]models.Alert, error) {
	m.gotAlertOpt = filter
	return m.alerts, nil
}

func (m *mockClient) Health() transit.Health {
	return transit.Health{Status: "ok", Timestamp: time.Now()}
}

func newTestRouter(client transit.Client) *mux.Router {
	r := mux.NewRouter()
	NewHandler(client).RegisterRoutes(r)
	return r
}

func TestHandleStationsFiltersAndDefaultsToEmptyList(t *testing.T) {
	client := &mockClient{}
	r := newTestRouter(client)

	req := httptest.NewRequest(http.MethodGet, "/stations?q=penn&system=LIRR", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "penn", client.gotFilter.Query)
	assert.Equal(t, models.SystemLIRR, client.gotFilter.System)

	var resp StationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestHandleStationsRejectsInvalidSystem(t *testing.T) {
	r := newTestRouter(&mockClient{})

	req := httptest.NewRequest(http.MethodGet, "/stations?system=BUS", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDeparturesParsesLimitAndSource(t *testing.T) {
	client := &mockClient{}
	r := newTestRouter(client)

	req := httptest.NewRequest(http.MethodGet, "/departures/LIRR:237?limitMinutes=30&source=scheduled", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, client.gotOpts.LimitMinutes)
	assert.Equal(t, 30, *client.gotOpts.LimitMinutes)
	assert.Equal(t, departures.SourceScheduled, client.gotOpts.Source)
}

func TestHandleDeparturesRejectsBadLimit(t *testing.T) {
	r := newTestRouter(&mockClient{})

	req := httptest.NewRequest(http.MethodGet, "/departures/LIRR:237?limitMinutes=-5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDeparturesRejectsBadSource(t *testing.T) {
	r := newTestRouter(&mockClient{})

	req := httptest.NewRequest(http.MethodGet, "/departures/LIRR:237?source=bogus", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAlertsParsesLinesAndFlags(t *testing.T) {
	client := &mockClient{}
	r := newTestRouter(client)

	req := httptest.NewRequest(http.MethodGet, "/alerts?lines=SUBWAY:A,SUBWAY:C&activeNow=true&includeLabels=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"SUBWAY:A", "SUBWAY:C"}, client.gotAlertOpt.Lines)
	assert.True(t, client.gotAlertOpt.ActiveNow)
	assert.True(t, client.gotAlertOpt.IncludeLabels)
}

func TestHandleDeparturesInternalErrorIs500(t *testing.T) {
	client := &mockClient{departErr: assertAnError{}}
	r := newTestRouter(client)

	req := httptest.NewRequest(http.MethodGet, "/departures/LIRR:237", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHealth(t *testing.T) {
	r := newTestRouter(&mockClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var health transit.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "boom" }
