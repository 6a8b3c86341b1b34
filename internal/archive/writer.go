// Package archive writes day-granularity snapshots of a site's sample
// history to zstd-compressed NDJSON files for cold storage. Files are
// written atomically via a temp file rename so a crashed archiver never
// leaves a truncated archive behind.
package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"dawnpatrol/internal/types"
)

// Writer archives sample series under a base directory, one file per site
// per day: <dir>/<site-id>/<YYYY-MM-DD>.ndjson.zst.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first use, not here, so construction never fails.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Path returns the archive file path for a site and day.
func (w *Writer) Path(siteID string, day time.Time) string {
	return filepath.Join(w.dir, siteID, day.Format("2006-01-02")+".ndjson.zst")
}

// WriteDay archives the samples that fall on the given calendar day (in the
// day's location). Samples outside the day are skipped. Returns the number
// of samples written; an existing archive for the day is replaced.
func (w *Writer) WriteDay(siteID string, day time.Time, series types.SampleSeries) (int, error) {
	target := w.Path(siteID, day)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("archive: failed to create site directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".archive-*")
	if err != nil {
		return 0, fmt.Errorf("archive: failed to create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		return 0, fmt.Errorf("archive: failed to create zstd writer: %w", err)
	}

	y, m, d := day.Date()
	written := 0
	je := json.NewEncoder(enc)
	for _, sample := range series {
		sy, sm, sd := sample.ObservedAt.In(day.Location()).Date()
		if sy != y || sm != m || sd != d {
			continue
		}
		if err := je.Encode(sample); err != nil {
			enc.Close()
			return 0, fmt.Errorf("archive: failed to encode sample: %w", err)
		}
		written++
	}

	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("archive: failed to flush zstd stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("archive: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, fmt.Errorf("archive: failed to move archive into place: %w", err)
	}

	w.logger.Info("day archived",
		"site_id", siteID,
		"day", day.Format("2006-01-02"),
		"samples", written,
		"path", target,
	)
	return written, nil
}

// ReadDay loads a previously written day archive. A missing archive returns
// an empty series and no error; the caller cannot distinguish "no samples
// that day" from "never archived", and does not need to.
func (w *Writer) ReadDay(siteID string, day time.Time) (types.SampleSeries, error) {
	f, err := os.Open(w.Path(siteID, day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: failed to open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var series types.SampleSeries
	jd := json.NewDecoder(dec)
	for jd.More() {
		var sample types.Sample
		if err := jd.Decode(&sample); err != nil {
			return nil, fmt.Errorf("archive: failed to decode sample: %w", err)
		}
		series = append(series, sample)
	}
	return series, nil
}
