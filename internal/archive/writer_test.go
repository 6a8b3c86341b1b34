package archive

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dawnpatrol/internal/types"
)

func f64(v float64) *float64 { return &v }

func testWriter(t *testing.T) *Writer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewWriter(t.TempDir(), logger)
}

func daySeries(day time.Time) types.SampleSeries {
	return types.SampleSeries{
		{ObservedAt: day.Add(5 * time.Hour), SpeedMS: 7.2, DirectionDeg: 300},
		{ObservedAt: day.Add(6 * time.Hour), SpeedMS: 8.1, DirectionDeg: 295, GustMS: f64(10.4)},
	}
}

func TestWriteAndReadDay(t *testing.T) {
	w := testWriter(t)
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	written, err := w.WriteDay("site-1", day, daySeries(day))
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	got, err := w.ReadDay("site-1", day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 7.2, got[0].SpeedMS)
	assert.Equal(t, 10.4, *got[1].GustMS)
	assert.True(t, got[0].ObservedAt.Equal(day.Add(5*time.Hour)))
}

func TestWriteDaySkipsOtherDays(t *testing.T) {
	w := testWriter(t)
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	series := append(daySeries(day),
		types.Sample{ObservedAt: day.AddDate(0, 0, 1).Add(time.Hour), SpeedMS: 9},
		types.Sample{ObservedAt: day.Add(-time.Minute), SpeedMS: 3},
	)

	written, err := w.WriteDay("site-1", day, series)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
}

func TestReadDayMissingArchive(t *testing.T) {
	w := testWriter(t)

	got, err := w.ReadDay("site-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWriteDayReplacesExisting(t *testing.T) {
	w := testWriter(t)
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	_, err := w.WriteDay("site-1", day, daySeries(day))
	require.NoError(t, err)

	written, err := w.WriteDay("site-1", day, daySeries(day)[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	got, err := w.ReadDay("site-1", day)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWriteDayLeavesNoTempFiles(t *testing.T) {
	w := testWriter(t)
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	_, err := w.WriteDay("site-1", day, daySeries(day))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(w.Path("site-1", day)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2026-08-24.ndjson.zst", entries[0].Name())
}
