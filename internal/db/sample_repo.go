package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"dawnpatrol/internal/types"
)

// SampleRepository provides data access for the wind_samples table. The
// table's primary key is (site_id, observed_at), which enforces the
// one-sample-per-instant invariant of a SampleSeries at the storage layer.
type SampleRepository struct {
	db DBTX
}

// NewSampleRepository creates a new SampleRepository backed by the given
// database connection (pool or transaction).
func NewSampleRepository(db DBTX) *SampleRepository {
	return &SampleRepository{db: db}
}

// InsertSamples stores the given samples for a site, skipping any whose
// observation instant is already recorded. Re-polling overlapping history is
// the normal case, so conflicts are not errors. Returns the number of rows
// actually inserted.
func (r *SampleRepository) InsertSamples(ctx context.Context, siteID string, source types.SampleSource, samples types.SampleSeries) (int, error) {
	inserted := 0
	for _, s := range samples {
		tag, err := r.db.Exec(ctx, `
			INSERT INTO wind_samples (site_id, observed_at, speed_ms, direction_deg, gust_ms, source)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (site_id, observed_at) DO NOTHING`,
			siteID, s.ObservedAt.UTC(), s.SpeedMS, s.DirectionDeg, s.GustMS, source,
		)
		if err != nil {
			return inserted, types.NewAppError(types.ErrCodeInternalDB,
				"failed to insert wind sample", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// ListRange returns the site's samples with since <= observed_at <= until,
// in ascending observation order. The result is a valid SampleSeries: the
// primary key guarantees unique timestamps and the ORDER BY guarantees
// chronology.
func (r *SampleRepository) ListRange(ctx context.Context, siteID string, since, until time.Time) (types.SampleSeries, error) {
	rows, err := r.db.Query(ctx, `
		SELECT observed_at, speed_ms, direction_deg, gust_ms
		FROM wind_samples
		WHERE site_id = $1 AND observed_at >= $2 AND observed_at <= $3
		ORDER BY observed_at ASC`,
		siteID, since.UTC(), until.UTC(),
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to query wind samples", err)
	}
	defer rows.Close()

	var series types.SampleSeries
	for rows.Next() {
		var s types.Sample
		if err := rows.Scan(&s.ObservedAt, &s.SpeedMS, &s.DirectionDeg, &s.GustMS); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB,
				"failed to scan wind sample row", err)
		}
		series = append(series, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to iterate wind sample rows", err)
	}
	return series, nil
}

// Latest returns the most recent sample for a site, or nil when the site has
// no samples yet.
func (r *SampleRepository) Latest(ctx context.Context, siteID string) (*types.Sample, error) {
	var s types.Sample
	err := r.db.QueryRow(ctx, `
		SELECT observed_at, speed_ms, direction_deg, gust_ms
		FROM wind_samples
		WHERE site_id = $1
		ORDER BY observed_at DESC
		LIMIT 1`,
		siteID,
	).Scan(&s.ObservedAt, &s.SpeedMS, &s.DirectionDeg, &s.GustMS)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to load latest wind sample", err)
	}
	return &s, nil
}
