package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dawnpatrol/internal/types"
)

// SiteRepository provides data access for the sites table. Direction and
// threshold configuration are stored as JSONB columns and marshalled through
// the Scanner/Valuer implementations on the config types.
type SiteRepository struct {
	db DBTX
}

// NewSiteRepository creates a new SiteRepository backed by the given database
// connection (pool or transaction).
func NewSiteRepository(db DBTX) *SiteRepository {
	return &SiteRepository{db: db}
}

// siteColumns is the standard column set for site queries.
const siteColumns = `s.id, s.name, s.station_id, s.timezone,
	s.latitude, s.longitude, s.direction, s.thresholds,
	s.created_at, s.updated_at`

// scanSite scans a single site row. The columns must match siteColumns.
func scanSite(row pgx.Row) (*types.Site, error) {
	var site types.Site
	err := row.Scan(
		&site.ID,
		&site.Name,
		&site.StationID,
		&site.Timezone,
		&site.Latitude,
		&site.Longitude,
		&site.Direction,
		&site.Thresholds,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// Get returns the site with the given ID, or a not_found_site AppError when
// no such site exists.
func (r *SiteRepository) Get(ctx context.Context, id string) (*types.Site, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites s WHERE s.id = $1`, id)

	site, err := scanSite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundSite,
				fmt.Sprintf("site %q not found", id), err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to load site", err)
	}
	return site, nil
}

// List returns all configured sites ordered by name.
func (r *SiteRepository) List(ctx context.Context) ([]types.Site, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+siteColumns+` FROM sites s ORDER BY s.name`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to list sites", err)
	}
	defer rows.Close()

	var sites []types.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB,
				"failed to scan site row", err)
		}
		sites = append(sites, *site)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB,
			"failed to iterate site rows", err)
	}
	return sites, nil
}

// Upsert inserts the site or updates it in place when the ID already exists.
// created_at is preserved on update; updated_at always advances to now() on
// the database clock.
func (r *SiteRepository) Upsert(ctx context.Context, site *types.Site) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sites (id, name, station_id, timezone, latitude, longitude, direction, thresholds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			station_id = EXCLUDED.station_id,
			timezone = EXCLUDED.timezone,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			direction = EXCLUDED.direction,
			thresholds = EXCLUDED.thresholds,
			updated_at = now()`,
		site.ID, site.Name, site.StationID, site.Timezone,
		site.Latitude, site.Longitude, site.Direction, site.Thresholds,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB,
			"failed to upsert site", err)
	}
	return nil
}
