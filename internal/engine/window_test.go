package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dawnpatrol/internal/types"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 8, 25, hour, min, 0, 0, time.UTC)
}

func TestComputeTimeWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want types.TimeWindow
	}{
		{"pre-dawn review", at(2, 30), types.TimeWindow{StartHour: 4, EndHour: 21, IsMultiDay: true}},
		{"just before 4am", at(3, 59), types.TimeWindow{StartHour: 4, EndHour: 21, IsMultiDay: true}},
		{"start of daylight window", at(4, 0), types.TimeWindow{StartHour: 4, EndHour: 4}},
		{"midday", at(12, 15), types.TimeWindow{StartHour: 4, EndHour: 12}},
		{"evening", at(18, 0), types.TimeWindow{StartHour: 4, EndHour: 18}},
		{"last in-day hour", at(21, 45), types.TimeWindow{StartHour: 4, EndHour: 21}},
		{"late night", at(22, 5), types.TimeWindow{StartHour: 4, EndHour: 21}},
		{"just before midnight", at(23, 59), types.TimeWindow{StartHour: 4, EndHour: 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTimeWindow(tt.now))
		})
	}
}

func sampleAt(ts time.Time) types.Sample {
	return types.Sample{ObservedAt: ts, SpeedMS: 5, DirectionDeg: 300}
}

func TestFilterByWindowSameDay(t *testing.T) {
	now := at(18, 30)
	window := ComputeTimeWindow(now)

	series := types.SampleSeries{
		sampleAt(at(3, 0)),                   // before start hour
		sampleAt(at(6, 0)),                   // kept
		sampleAt(at(18, 15)),                 // kept, same hour as now
		sampleAt(at(18, 45)),                 // future within the hour, dropped
		sampleAt(at(6, 0).AddDate(0, 0, -1)), // yesterday, dropped
	}

	got := FilterByWindow(series, window, now)

	require.Len(t, got, 2)
	assert.Equal(t, at(6, 0), got[0].ObservedAt)
	assert.Equal(t, at(18, 15), got[1].ObservedAt)
}

func TestFilterByWindowMultiDay(t *testing.T) {
	now := at(2, 0)
	window := ComputeTimeWindow(now)
	require.True(t, window.IsMultiDay)

	yesterday := func(hour int) time.Time { return at(hour, 0).AddDate(0, 0, -1) }
	series := types.SampleSeries{
		sampleAt(yesterday(3)),  // before start hour
		sampleAt(yesterday(8)),  // kept
		sampleAt(yesterday(21)), // kept, end boundary
		sampleAt(yesterday(22)), // past end hour
		sampleAt(at(1, 0)),      // today, dropped in multi-day view
	}

	got := FilterByWindow(series, window, now)

	require.Len(t, got, 2)
	assert.Equal(t, yesterday(8), got[0].ObservedAt)
	assert.Equal(t, yesterday(21), got[1].ObservedAt)
}

func TestFilterByWindowHourBounds(t *testing.T) {
	// Whatever window is requested, no returned sample may sit outside its
	// hour bounds.
	now := at(22, 30)
	window := ComputeTimeWindow(now)

	var series types.SampleSeries
	for h := 0; h < 24; h++ {
		series = append(series, sampleAt(at(h, 10)))
	}

	got := FilterByWindow(series, window, now)
	require.NotEmpty(t, got)
	for _, s := range got {
		h := s.ObservedAt.Hour()
		assert.GreaterOrEqual(t, h, window.StartHour)
		assert.LessOrEqual(t, h, window.EndHour)
	}
}

func TestFilterByWindowEmptySeries(t *testing.T) {
	for _, now := range []time.Time{at(2, 0), at(12, 0), at(23, 0)} {
		got := FilterByWindow(nil, ComputeTimeWindow(now), now)
		assert.Empty(t, got)
	}
}
