package engine

import (
	"time"

	"dawnpatrol/internal/types"
)

// Daylight window bounds. Dawn patrol analysis never looks at samples before
// 4am, and a finished day is capped at 9pm.
const (
	windowStartHour = 4
	windowEndHour   = 21
)

// ComputeTimeWindow derives the reporting window from the current wall-clock
// time:
//
//   - Before 4am the caller is reviewing the night just ended, so the window
//     covers the previous calendar day's 4am-9pm and IsMultiDay is true.
//   - From 4am through 9pm the window is the strict "up to now" view:
//     start 4, end = the current hour. (The alternative "all available
//     same-day data" policy with a fixed 23 end is deliberately not used;
//     FilterByWindow already excludes future samples, so the strict end keeps
//     the window self-describing.)
//   - After 9pm the full 4am-9pm day window is returned; no further same-day
//     data is expected.
func ComputeTimeWindow(now time.Time) types.TimeWindow {
	h := now.Hour()
	switch {
	case h < windowStartHour:
		return types.TimeWindow{StartHour: windowStartHour, EndHour: windowEndHour, IsMultiDay: true}
	case h <= windowEndHour:
		return types.TimeWindow{StartHour: windowStartHour, EndHour: h}
	default:
		return types.TimeWindow{StartHour: windowStartHour, EndHour: windowEndHour}
	}
}

// FilterByWindow returns the samples that fall inside the window, evaluated
// in now's location. For a multi-day window only samples from yesterday's
// calendar date with an hour inside [StartHour, EndHour] are kept. Otherwise
// only today's samples inside the hour bounds are kept, and never any sample
// after now even when its hour numerically qualifies.
//
// Filtering an empty series returns an empty series; ordering is preserved.
func FilterByWindow(series types.SampleSeries, window types.TimeWindow, now time.Time) types.SampleSeries {
	if len(series) == 0 {
		return nil
	}

	loc := now.Location()
	today := now.In(loc)
	refYear, refMonth, refDay := today.Date()
	if window.IsMultiDay {
		refYear, refMonth, refDay = today.AddDate(0, 0, -1).Date()
	}

	var out types.SampleSeries
	for _, s := range series {
		t := s.ObservedAt.In(loc)
		y, m, d := t.Date()
		if y != refYear || m != refMonth || d != refDay {
			continue
		}
		if t.Hour() < window.StartHour || t.Hour() > window.EndHour {
			continue
		}
		if !window.IsMultiDay && t.After(now) {
			continue
		}
		out = append(out, s)
	}
	return out
}
