package engine

import (
	"fmt"
	"time"

	"dawnpatrol/internal/types"
)

// Freshness tiers. Live telemetry is preferred but volatile (gaps, drops);
// the 10/30 minute tiers trade optimistic responsiveness against a false
// "current" status during station outages.
const (
	// LiveValueWindow is the maximum age at which a live reading is still
	// used as the current value.
	LiveValueWindow = 10 * time.Minute
	// StaleAfter is the age beyond which whichever source is authoritative
	// is flagged stale.
	StaleAfter = 30 * time.Minute
	// liveCurrentBand is the live age below which the freshness message
	// reads "current".
	liveCurrentBand = 5 * time.Minute
	// offlineAfter is the series age beyond which the freshness message
	// warns the station may be offline.
	offlineAfter = 120 * time.Minute
)

// ResolveConditions arbitrates between a live reading and the historical
// series to produce the single current view of the wind.
//
// Value selection: the live sample wins while younger than LiveValueWindow;
// otherwise the most recent series entry; otherwise unknown (nil fields).
//
// Staleness: a live reading younger than StaleAfter means not stale,
// regardless of the series. Without one, the series' last entry decides.
// No data at all is always stale.
func ResolveConditions(live *types.LiveReading, series types.SampleSeries, now time.Time) types.CurrentConditions {
	out := types.CurrentConditions{
		Stale:     isStale(live, series, now),
		Freshness: freshnessMessage(live, series, now),
	}

	if live != nil && now.Sub(live.CapturedAt) < LiveValueWindow {
		s := live.Sample
		out.SpeedMS = &s.SpeedMS
		out.DirectionDeg = &s.DirectionDeg
		out.GustMS = s.GustMS
		return out
	}

	if last := series.Last(); last != nil {
		out.SpeedMS = &last.SpeedMS
		out.DirectionDeg = &last.DirectionDeg
		out.GustMS = last.GustMS
	}
	return out
}

// isStale implements the 30-minute staleness tier.
func isStale(live *types.LiveReading, series types.SampleSeries, now time.Time) bool {
	if live != nil && now.Sub(live.CapturedAt) < StaleAfter {
		return false
	}
	if last := series.Last(); last != nil {
		return now.Sub(last.ObservedAt) > StaleAfter
	}
	return true
}

// freshnessMessage renders the tiered human-readable freshness text for
// whichever source is authoritative. A live reading younger than StaleAfter
// is authoritative; otherwise the series; otherwise there is no data.
func freshnessMessage(live *types.LiveReading, series types.SampleSeries, now time.Time) string {
	if live != nil {
		age := now.Sub(live.CapturedAt)
		if age < liveCurrentBand {
			return "current"
		}
		if age < StaleAfter {
			return fmt.Sprintf("from %d minutes ago", int(age.Minutes()))
		}
	}

	if last := series.Last(); last != nil {
		age := now.Sub(last.ObservedAt)
		switch {
		case age <= StaleAfter:
			return "current"
		case age <= offlineAfter:
			return fmt.Sprintf("%d minutes ago", int(age.Minutes()))
		default:
			return fmt.Sprintf("no updates for %d hours; station may be offline", int(age.Hours()))
		}
	}

	return "no wind data available"
}
