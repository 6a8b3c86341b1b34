package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dawnpatrol/internal/types"
)

// knotsToMS converts the station API's native knots to meters per second.
const knotsToMS = 0.514444

// StationClient fetches live readings and historical wind series from the
// station telemetry API. The API reports speeds in knots and directions in
// degrees true; speeds are converted to m/s here so the engine never sees a
// raw unit.
type StationClient struct {
	base    *BaseClient
	baseURL string
}

// NewStationClient creates a StationClient for the given API base URL
// (no trailing slash).
func NewStationClient(base *BaseClient, baseURL string) *StationClient {
	return &StationClient{base: base, baseURL: baseURL}
}

// stationObservation is the wire format of one telemetry observation.
type stationObservation struct {
	ObservedAt   time.Time `json:"observed_at"`
	SpeedKt      float64   `json:"speed_kt"`
	DirectionDeg float64   `json:"direction_deg"`
	GustKt       *float64  `json:"gust_kt,omitempty"`
}

// toSample converts a wire observation into a unit-normalized Sample.
func (o stationObservation) toSample() types.Sample {
	s := types.Sample{
		ObservedAt:   o.ObservedAt,
		SpeedMS:      o.SpeedKt * knotsToMS,
		DirectionDeg: o.DirectionDeg,
	}
	if o.GustKt != nil {
		g := *o.GustKt * knotsToMS
		s.GustMS = &g
	}
	return s
}

// FetchLive returns the station's most recent real-time reading, or nil
// (without error) when the station has no live feed right now. The returned
// CapturedAt is the fetch instant supplied by the caller's clock.
func (c *StationClient) FetchLive(ctx context.Context, stationID string, now time.Time) (*types.LiveReading, error) {
	u := fmt.Sprintf("%s/v1/stations/%s/live", c.baseURL, url.PathEscape(stationID))

	var obs stationObservation
	found, err := getJSON(ctx, c.base, u, &obs)
	if err != nil {
		return nil, fmt.Errorf("upstream: live reading for station %s: %w", stationID, err)
	}
	if !found {
		return nil, nil
	}

	return &types.LiveReading{
		Sample:     obs.toSample(),
		CapturedAt: now,
	}, nil
}

// FetchHistory returns the station's observations since the given instant,
// oldest first. An empty series is a valid response.
func (c *StationClient) FetchHistory(ctx context.Context, stationID string, since time.Time) (types.SampleSeries, error) {
	u := fmt.Sprintf("%s/v1/stations/%s/history?since=%s",
		c.baseURL, url.PathEscape(stationID), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	var payload struct {
		Observations []stationObservation `json:"observations"`
	}
	found, err := getJSON(ctx, c.base, u, &payload)
	if err != nil {
		return nil, fmt.Errorf("upstream: history for station %s: %w", stationID, err)
	}
	if !found {
		return nil, nil
	}

	series := make(types.SampleSeries, 0, len(payload.Observations))
	for _, obs := range payload.Observations {
		series = append(series, obs.toSample())
	}
	return series, nil
}

// ForecastClient fetches the numeric factor inputs for the dawn patrol range
// from the forecast API.
type ForecastClient struct {
	base    *BaseClient
	baseURL string
}

// NewForecastClient creates a ForecastClient for the given API base URL
// (no trailing slash).
func NewForecastClient(base *BaseClient, baseURL string) *ForecastClient {
	return &ForecastClient{base: base, baseURL: baseURL}
}

// FetchBundle returns the forecast factor inputs for the dawn patrol range
// at the given coordinates. Absent fields stay nil and degrade the matching
// factor downstream; a missing forecast altogether yields an empty bundle,
// not an error.
func (c *ForecastClient) FetchBundle(ctx context.Context, lat, lon float64, date time.Time) (types.ForecastBundle, error) {
	u := fmt.Sprintf("%s/v1/dawn-patrol?lat=%.4f&lon=%.4f&date=%s",
		c.baseURL, lat, lon, date.UTC().Format("2006-01-02"))

	var bundle types.ForecastBundle
	found, err := getJSON(ctx, c.base, u, &bundle)
	if err != nil {
		return types.ForecastBundle{}, fmt.Errorf("upstream: forecast bundle: %w", err)
	}
	if !found {
		return types.ForecastBundle{}, nil
	}
	return bundle, nil
}

// getJSON issues a GET through the resilient BaseClient and decodes the JSON
// body into dst. A 404 is reported as found=false without error; stations
// and forecasts legitimately come and go.
func getJSON(ctx context.Context, c *BaseClient, u string, dst any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to build upstream request", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, types.NewAppError(types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("upstream returned unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return false, types.NewAppError(types.ErrCodeUpstreamUnavailable,
			"failed to decode upstream response", err)
	}
	return true, nil
}
