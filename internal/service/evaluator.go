// Package service orchestrates the pure decision engine against the real
// collaborators: site configuration, stored samples, upstream telemetry and
// forecasts, and the decision event queue. This is the only impure layer;
// everything it computes is delegated to internal/engine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dawnpatrol/internal/engine"
	"dawnpatrol/internal/types"
)

// historyLookback bounds how far back stored samples are loaded before
// window filtering. Two calendar days always covers the multi-day window.
const historyLookback = 48 * time.Hour

// SiteStore provides read access to site configuration.
type SiteStore interface {
	Get(ctx context.Context, id string) (*types.Site, error)
	List(ctx context.Context) ([]types.Site, error)
}

// SampleStore provides access to stored wind samples.
type SampleStore interface {
	InsertSamples(ctx context.Context, siteID string, source types.SampleSource, samples types.SampleSeries) (int, error)
	ListRange(ctx context.Context, siteID string, since, until time.Time) (types.SampleSeries, error)
	Latest(ctx context.Context, siteID string) (*types.Sample, error)
}

// TelemetrySource yields live readings and recent history for a station.
type TelemetrySource interface {
	FetchLive(ctx context.Context, stationID string, now time.Time) (*types.LiveReading, error)
	FetchHistory(ctx context.Context, stationID string, since time.Time) (types.SampleSeries, error)
}

// ForecastSource yields the factor inputs for the dawn patrol range.
type ForecastSource interface {
	FetchBundle(ctx context.Context, lat, lon float64, date time.Time) (types.ForecastBundle, error)
}

// DecisionSink receives decision events for the downstream alert layer.
type DecisionSink interface {
	Publish(ctx context.Context, site types.Site, decision types.Decision, now time.Time) error
}

// MetricSink receives operational telemetry. Implementations must be
// best-effort and never return errors.
type MetricSink interface {
	RecordDecision(ctx context.Context, siteID string, rec types.Recommendation)
	RecordSamplesIngested(ctx context.Context, siteID string, count int)
	RecordUpstreamFailure(ctx context.Context, endpoint string)
}

// Clock abstracts time.Now so evaluations are replayable in tests.
type Clock func() time.Time

// Evaluator wires the engine to its collaborators and produces SiteReports.
type Evaluator struct {
	Sites     SiteStore
	Samples   SampleStore
	Telemetry TelemetrySource
	Forecasts ForecastSource
	Decisions DecisionSink // may be nil when publishing is disabled
	Metrics   MetricSink   // may be nil when metrics are disabled
	Policy    engine.DecisionPolicy
	Log       *slog.Logger
	Now       Clock
}

// now returns the injected clock's time, defaulting to time.Now in UTC.
func (e *Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// Report runs the full evaluation for one site: resolve current conditions
// from live telemetry and stored history, compute and apply the analysis
// window, assess the wind direction, and run the five-factor model against
// the forecast bundle.
//
// Upstream outages degrade rather than fail: a dead live feed falls back to
// stored history, and a missing forecast produces a SKIP-leaning decision
// with zero-confidence factors. Only site lookup and storage errors are
// returned.
func (e *Evaluator) Report(ctx context.Context, siteID string) (*types.SiteReport, error) {
	now := e.now()

	site, err := e.Sites.Get(ctx, siteID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(site.Timezone)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidTimezone,
			fmt.Sprintf("site %q has invalid timezone %q", site.ID, site.Timezone), err)
	}
	localNow := now.In(loc)

	live := e.fetchLive(ctx, site, now)

	series, err := e.Samples.ListRange(ctx, site.ID, now.Add(-historyLookback), now)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		// A station dead longer than the lookback still has a last known
		// sample; surfacing it lets the freshness resolver report "offline
		// for N hours" instead of a bare no-data message.
		last, err := e.Samples.Latest(ctx, site.ID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			series = types.SampleSeries{*last}
		}
	}

	window := engine.ComputeTimeWindow(localNow)
	bounded := engine.FilterByWindow(series, window, localNow)
	conditions := engine.ResolveConditions(live, series, now)
	direction := engine.AssessDirection(conditions.DirectionDeg, &site.Direction)

	bundle := e.fetchBundle(ctx, site, localNow)
	decision := engine.EvaluateDawnPatrol(bundle, site.Thresholds, e.Policy, now)

	if e.Metrics != nil {
		e.Metrics.RecordDecision(ctx, site.ID, decision.Recommendation)
	}

	return &types.SiteReport{
		Site:       *site,
		Conditions: conditions,
		Window:     window,
		Samples:    bounded,
		Direction:  direction,
		Decision:   decision,
	}, nil
}

// Poll ingests fresh telemetry for one site and then evaluates it. New
// history is stored before the report runs so the freshness resolver sees
// everything the station had. A GO or SKIP decision is published to the
// decision sink; MARGINAL is deliberately not published to keep the alert
// channel quiet.
func (e *Evaluator) Poll(ctx context.Context, siteID string) (*types.SiteReport, error) {
	now := e.now()

	site, err := e.Sites.Get(ctx, siteID)
	if err != nil {
		return nil, err
	}

	history, err := e.Telemetry.FetchHistory(ctx, site.StationID, now.Add(-historyLookback))
	if err != nil {
		if e.Metrics != nil {
			e.Metrics.RecordUpstreamFailure(ctx, "station")
		}
		e.Log.WarnContext(ctx, "history fetch failed, evaluating with stored samples",
			"site_id", site.ID, "station_id", site.StationID, "error", err)
	} else if len(history) > 0 {
		inserted, err := e.Samples.InsertSamples(ctx, site.ID, types.SourceStation, history)
		if err != nil {
			return nil, err
		}
		if e.Metrics != nil {
			e.Metrics.RecordSamplesIngested(ctx, site.ID, inserted)
		}
		e.Log.InfoContext(ctx, "station history ingested",
			"site_id", site.ID, "fetched", len(history), "inserted", inserted)
	}

	report, err := e.Report(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if e.Decisions != nil && report.Decision.Recommendation != types.RecommendationMarginal {
		if err := e.Decisions.Publish(ctx, report.Site, report.Decision, now); err != nil {
			// Publishing is telemetry-out, not core correctness; log and move on.
			e.Log.ErrorContext(ctx, "decision publish failed",
				"site_id", site.ID, "error", err)
		}
	}

	return report, nil
}

// Window computes the current analysis window in the site's local time
// without touching any upstream.
func (e *Evaluator) Window(ctx context.Context, siteID string) (types.TimeWindow, error) {
	site, err := e.Sites.Get(ctx, siteID)
	if err != nil {
		return types.TimeWindow{}, err
	}
	loc, err := time.LoadLocation(site.Timezone)
	if err != nil {
		return types.TimeWindow{}, types.NewAppError(types.ErrCodeValidationInvalidTimezone,
			fmt.Sprintf("site %q has invalid timezone %q", site.ID, site.Timezone), err)
	}
	return engine.ComputeTimeWindow(e.now().In(loc)), nil
}

// fetchLive pulls the live reading, degrading to nil on upstream failure so
// the freshness resolver falls back to stored history.
func (e *Evaluator) fetchLive(ctx context.Context, site *types.Site, now time.Time) *types.LiveReading {
	live, err := e.Telemetry.FetchLive(ctx, site.StationID, now)
	if err != nil {
		if e.Metrics != nil {
			e.Metrics.RecordUpstreamFailure(ctx, "station")
		}
		e.Log.WarnContext(ctx, "live reading unavailable",
			"site_id", site.ID, "station_id", site.StationID, "error", err)
		return nil
	}
	return live
}

// fetchBundle pulls the forecast inputs, degrading to an empty bundle on
// failure. An empty bundle fails every factor with zero confidence, which
// is the conservative outcome the caller wants during a forecast outage.
func (e *Evaluator) fetchBundle(ctx context.Context, site *types.Site, localNow time.Time) types.ForecastBundle {
	bundle, err := e.Forecasts.FetchBundle(ctx, site.Latitude, site.Longitude, localNow)
	if err != nil {
		if e.Metrics != nil {
			e.Metrics.RecordUpstreamFailure(ctx, "forecast")
		}
		e.Log.WarnContext(ctx, "forecast bundle unavailable, factors will degrade",
			"site_id", site.ID, "error", err)
		return types.ForecastBundle{}
	}
	return bundle
}
