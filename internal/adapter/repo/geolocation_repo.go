package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"geoapi/internal/domain"
	"geoapi/internal/infra"
)

const uniqueViolationCode = "23505"

// Querier is the subset of pgxpool.Pool the repository needs. Each method
// issues a single statement, so every mutation is atomic on its own.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GeolocationRepoPG implements domain.GeolocationStore backed by PostgreSQL.
type GeolocationRepoPG struct {
	db     Querier
	logger infra.Logger
}

// NewGeolocationRepo creates a new GeolocationRepoPG.
func NewGeolocationRepo(db Querier, logger infra.Logger) *GeolocationRepoPG {
	return &GeolocationRepoPG{db: db, logger: logger}
}

const geolocationColumns = `ip, url, latitude, longitude, city, region, country, continent, postal_code, timezone, isp, created_at, updated_at`

const upsertQuery = `
INSERT INTO ip_geolocation (ip, url, latitude, longitude, city, region, country, continent, postal_code, timezone, isp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (ip) DO UPDATE
SET url = EXCLUDED.url,
    latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude,
    city = EXCLUDED.city,
    region = EXCLUDED.region,
    country = EXCLUDED.country,
    continent = EXCLUDED.continent,
    postal_code = EXCLUDED.postal_code,
    timezone = EXCLUDED.timezone,
    isp = EXCLUDED.isp,
    updated_at = NOW()
RETURNING ` + geolocationColumns + `, (xmax = 0) AS inserted;
`

// Upsert inserts the record or overwrites the existing row with the same IP.
// The created/updated discrimination comes from the row's xmax system column
// in the RETURNING clause: xmax is zero only for a freshly inserted row, so
// the classification is race-free under concurrent writers.
func (r *GeolocationRepoPG) Upsert(ctx context.Context, g *domain.Geolocation) (*domain.Geolocation, domain.UpsertOutcome, error) {
	row := r.db.QueryRow(ctx, upsertQuery,
		g.IP, g.URL, g.Latitude, g.Longitude, g.City, g.Region, g.Country, g.Continent, g.PostalCode, g.Timezone, g.ISP,
	)

	var (
		out      domain.Geolocation
		inserted bool
	)
	if err := scanGeolocation(row, &out, &inserted); err != nil {
		return nil, "", storeError("upsert", err)
	}

	outcome := domain.OutcomeUpdated
	if inserted {
		outcome = domain.OutcomeCreated
	}
	r.logger.Info().Str("ip", out.IP).Str("outcome", string(outcome)).Msg("geolocation upserted")
	return &out, outcome, nil
}

const addQuery = `
INSERT INTO ip_geolocation (ip, url, latitude, longitude, city, region, country, continent, postal_code, timezone, isp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + geolocationColumns + `;
`

// Add strictly inserts; a row with the same IP fails with ErrDuplicate.
func (r *GeolocationRepoPG) Add(ctx context.Context, g *domain.Geolocation) (*domain.Geolocation, error) {
	row := r.db.QueryRow(ctx, addQuery,
		g.IP, g.URL, g.Latitude, g.Longitude, g.City, g.Region, g.Country, g.Continent, g.PostalCode, g.Timezone, g.ISP,
	)

	var out domain.Geolocation
	if err := scanGeolocation(row, &out, nil); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, domain.ErrDuplicate
		}
		return nil, storeError("add", err)
	}
	return &out, nil
}

const updateQuery = `
UPDATE ip_geolocation
SET url = $2,
    latitude = $3,
    longitude = $4,
    city = $5,
    region = $6,
    country = $7,
    continent = $8,
    postal_code = $9,
    timezone = $10,
    isp = $11,
    updated_at = NOW()
WHERE ip = $1
RETURNING ` + geolocationColumns + `;
`

// Update overwrites an existing row; ErrNotFound when no row has this IP.
func (r *GeolocationRepoPG) Update(ctx context.Context, g *domain.Geolocation) (*domain.Geolocation, error) {
	row := r.db.QueryRow(ctx, updateQuery,
		g.IP, g.URL, g.Latitude, g.Longitude, g.City, g.Region, g.Country, g.Continent, g.PostalCode, g.Timezone, g.ISP,
	)

	var out domain.Geolocation
	if err := scanGeolocation(row, &out, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError("update", err)
	}
	return &out, nil
}

// GetByIP fetches the record for an IP; ErrNotFound when absent.
func (r *GeolocationRepoPG) GetByIP(ctx context.Context, ip string) (*domain.Geolocation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+geolocationColumns+` FROM ip_geolocation WHERE ip = $1`, ip)
	return r.scanOne("get_by_ip", row)
}

// GetByURL fetches a record bound to a domain. url is not unique; ordering by
// the primary key makes the pick deterministic when several IPs share one.
func (r *GeolocationRepoPG) GetByURL(ctx context.Context, url string) (*domain.Geolocation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+geolocationColumns+` FROM ip_geolocation WHERE url = $1 ORDER BY ip LIMIT 1`, url)
	return r.scanOne("get_by_url", row)
}

// ExistsByIP reports whether a record exists for this IP.
func (r *GeolocationRepoPG) ExistsByIP(ctx context.Context, ip string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM ip_geolocation WHERE ip = $1)`, ip)
}

// ExistsByURL reports whether any record is bound to this domain.
func (r *GeolocationRepoPG) ExistsByURL(ctx context.Context, url string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM ip_geolocation WHERE url = $1)`, url)
}

// DeleteByIP removes the record for an IP, reporting whether a row went away.
func (r *GeolocationRepoPG) DeleteByIP(ctx context.Context, ip string) (bool, error) {
	return r.delete(ctx, `DELETE FROM ip_geolocation WHERE ip = $1`, ip)
}

// DeleteByURL removes every record bound to a domain.
func (r *GeolocationRepoPG) DeleteByURL(ctx context.Context, url string) (bool, error) {
	return r.delete(ctx, `DELETE FROM ip_geolocation WHERE url = $1`, url)
}

// Available issues a trivial round trip. It never returns an error; any
// failure reads as unavailable.
func (r *GeolocationRepoPG) Available(ctx context.Context) bool {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		r.logger.Warn().Err(err).Msg("store availability probe failed")
		return false
	}
	return true
}

func (r *GeolocationRepoPG) scanOne(op string, row pgx.Row) (*domain.Geolocation, error) {
	var out domain.Geolocation
	if err := scanGeolocation(row, &out, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError(op, err)
	}
	return &out, nil
}

func (r *GeolocationRepoPG) exists(ctx context.Context, query, key string) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, query, key).Scan(&found); err != nil {
		return false, storeError("exists", err)
	}
	return found, nil
}

func (r *GeolocationRepoPG) delete(ctx context.Context, query, key string) (bool, error) {
	tag, err := r.db.Exec(ctx, query, key)
	if err != nil {
		return false, storeError("delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanGeolocation(row pgx.Row, out *domain.Geolocation, inserted *bool) error {
	dest := []any{
		&out.IP, &out.URL, &out.Latitude, &out.Longitude, &out.City, &out.Region,
		&out.Country, &out.Continent, &out.PostalCode, &out.Timezone, &out.ISP,
		&out.CreatedAt, &out.UpdatedAt,
	}
	if inserted != nil {
		dest = append(dest, inserted)
	}
	return row.Scan(dest...)
}

// storeError keeps the error set closed for the boundary: anything the store
// cannot classify surfaces as ErrStoreUnavailable.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

var _ domain.GeolocationStore = (*GeolocationRepoPG)(nil)
