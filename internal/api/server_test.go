package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dawnpatrol/internal/config"
	"dawnpatrol/internal/engine"
	"dawnpatrol/internal/service"
	"dawnpatrol/internal/types"
)

var anchor = time.Date(2026, 8, 25, 6, 15, 0, 0, time.UTC)

type stubSites struct {
	site *types.Site
	err  error
}

func (s *stubSites) Get(ctx context.Context, id string) (*types.Site, error) {
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.site
	return &copied, nil
}

func (s *stubSites) List(ctx context.Context) ([]types.Site, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []types.Site{*s.site}, nil
}

type stubSamples struct {
	series types.SampleSeries
}

func (s *stubSamples) InsertSamples(ctx context.Context, siteID string, source types.SampleSource, samples types.SampleSeries) (int, error) {
	return len(samples), nil
}

func (s *stubSamples) ListRange(ctx context.Context, siteID string, since, until time.Time) (types.SampleSeries, error) {
	return s.series, nil
}

func (s *stubSamples) Latest(ctx context.Context, siteID string) (*types.Sample, error) {
	return s.series.Last(), nil
}

type stubTelemetry struct{}

func (stubTelemetry) FetchLive(ctx context.Context, stationID string, now time.Time) (*types.LiveReading, error) {
	return nil, nil
}

func (stubTelemetry) FetchHistory(ctx context.Context, stationID string, since time.Time) (types.SampleSeries, error) {
	return nil, nil
}

type stubForecasts struct {
	bundle types.ForecastBundle
}

func (s *stubForecasts) FetchBundle(ctx context.Context, lat, lon float64, date time.Time) (types.ForecastBundle, error) {
	return s.bundle, nil
}

func f64(v float64) *float64 { return &v }

func testSite() *types.Site {
	return &types.Site{
		ID:        "site-1",
		Name:      "Sandy Point",
		StationID: "st-42",
		Timezone:  "UTC",
		Direction: types.DirectionConfig{
			IdealMin:       270,
			IdealMax:       330,
			PerfectHeading: 297,
		},
		Thresholds: types.FactorThresholds{}.WithDefaults(),
	}
}

func newTestServer(t *testing.T, sites *stubSites) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	evaluator := &service.Evaluator{
		Sites:   sites,
		Samples: &stubSamples{series: types.SampleSeries{
			{ObservedAt: anchor.Add(-8 * time.Minute), SpeedMS: 8.5, DirectionDeg: 275},
		}},
		Telemetry: stubTelemetry{},
		Forecasts: &stubForecasts{bundle: types.ForecastBundle{
			PrecipitationProb: f64(5),
			ClearSkyPct:       f64(90),
			PressureDeltaHPa:  f64(0.5),
			TemperatureDiffC:  f64(12),
			WaveEnhancement:   f64(80),
		}},
		Policy: engine.DefaultDecisionPolicy(),
		Log:    logger,
		Now:    func() time.Time { return anchor },
	}

	cfg := &config.Config{Build: config.NewBuildInfo()}
	srv, err := NewServer(cfg, sites, evaluator, logger)
	require.NoError(t, err)
	srv.MountRoutes()
	return srv
}

func doRequest(srv *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})

	rec := doRequest(srv, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data healthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data.Status)
	assert.NotEmpty(t, body.Data.Version)
}

func TestListSites(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})

	rec := doRequest(srv, http.MethodGet, "/v1/sites")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []types.Site `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Sandy Point", body.Data[0].Name)
}

func TestGetSiteNotFound(t *testing.T) {
	srv := newTestServer(t, &stubSites{
		err: types.NewAppError(types.ErrCodeNotFoundSite, "site not found", nil),
	})

	rec := doRequest(srv, http.MethodGet, "/v1/sites/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(types.ErrCodeNotFoundSite), body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
}

func TestConditions(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})

	rec := doRequest(srv, http.MethodGet, "/v1/sites/site-1/conditions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data conditionsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Conditions.SpeedMS)
	assert.Equal(t, 8.5, *body.Data.Conditions.SpeedMS)
	assert.Equal(t, types.DirectionIdeal, body.Data.Direction.Class)
	assert.Len(t, body.Data.Samples, 1)
}

func TestWindow(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})

	rec := doRequest(srv, http.MethodGet, "/v1/sites/site-1/window")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data types.TimeWindow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.StartHour)
	assert.Equal(t, 6, body.Data.EndHour)
	assert.False(t, body.Data.IsMultiDay)
}

func TestDecision(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})

	rec := doRequest(srv, http.MethodGet, "/v1/sites/site-1/decision")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data types.SiteReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, types.RecommendationGo, body.Data.Decision.Recommendation)
	assert.Len(t, body.Data.Decision.Factors, 5)
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "trace-me")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "trace-me", rec.Header().Get("X-Request-Id"))
}

func TestRequestIDGenerated(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})

	rec := doRequest(srv, http.MethodGet, "/healthz")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRecovererCatchesPanic(t *testing.T) {
	srv := newTestServer(t, &stubSites{site: testSite()})
	srv.Router().Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := doRequest(srv, http.MethodGet, "/panic")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), body.Error.Code)
}
