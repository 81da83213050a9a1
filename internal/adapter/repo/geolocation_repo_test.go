package repo

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"geoapi/internal/domain"
)

func TestUpsertClassifiesInsertAsCreated(t *testing.T) {
	r := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			if len(args) != 11 {
				t.Fatalf("upsert args = %d, want 11", len(args))
			}
			return geolocationRow(t, sampleRecord(), boolPtr(true))
		},
	})

	got, outcome, err := r.Upsert(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if outcome != domain.OutcomeCreated {
		t.Fatalf("outcome = %q, want created", outcome)
	}
	if got.IP != "134.201.250.155" {
		t.Fatalf("IP = %q", got.IP)
	}
}

func TestUpsertClassifiesConflictAsUpdated(t *testing.T) {
	r := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return geolocationRow(t, sampleRecord(), boolPtr(false))
		},
	})

	_, outcome, err := r.Upsert(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if outcome != domain.OutcomeUpdated {
		t.Fatalf("outcome = %q, want updated", outcome)
	}
}

func TestUpsertWrapsConnectivityErrors(t *testing.T) {
	r := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return errRow{err: errors.New("connection refused")}
		},
	})

	_, _, err := r.Upsert(context.Background(), sampleRecord())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Upsert error = %v, want ErrStoreUnavailable", err)
	}
}

func TestAddMapsUniqueViolationToDuplicate(t *testing.T) {
	r := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return errRow{err: &pgconn.PgError{Code: "23505"}}
		},
	})

	if _, err := r.Add(context.Background(), sampleRecord()); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("Add error = %v, want ErrDuplicate", err)
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	r := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return errRow{err: pgx.ErrNoRows}
		},
	})

	if _, err := r.Update(context.Background(), sampleRecord()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update error = %v, want ErrNotFound", err)
	}
}

func TestGetByIPAbsentIsNotFound(t *testing.T) {
	r := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return errRow{err: pgx.ErrNoRows}
		},
	})

	if _, err := r.GetByIP(context.Background(), "203.0.113.9"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByIP error = %v, want ErrNotFound", err)
	}
}

func TestGetByIPConnectivityErrorIsUnavailable(t *testing.T) {
	r := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return errRow{err: errors.New("dial tcp: connection refused")}
		},
	})

	if _, err := r.GetByIP(context.Background(), "203.0.113.9"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("GetByIP error = %v, want ErrStoreUnavailable", err)
	}
}

func TestDeleteReportsRowsAffected(t *testing.T) {
	for _, tc := range []struct {
		tag  string
		want bool
	}{
		{"DELETE 1", true},
		{"DELETE 0", false},
	} {
		r := newTestRepo(&fakeQuerier{
			exec: func(query string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag(tc.tag), nil
			},
		})
		got, err := r.DeleteByIP(context.Background(), "203.0.113.9")
		if err != nil {
			t.Fatalf("DeleteByIP returned error: %v", err)
		}
		if got != tc.want {
			t.Fatalf("DeleteByIP with tag %q = %v, want %v", tc.tag, got, tc.want)
		}
	}
}

func TestAvailableNeverErrors(t *testing.T) {
	up := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return scanRow{scan: func(dest ...any) error {
				*(dest[0].(*int)) = 1
				return nil
			}}
		},
	})
	if !up.Available(context.Background()) {
		t.Fatalf("Available() = false, want true")
	}

	down := newTestRepo(&fakeQuerier{
		queryRow: func(query string, args ...any) pgx.Row {
			return errRow{err: errors.New("server closed the connection")}
		},
	})
	if down.Available(context.Background()) {
		t.Fatalf("Available() = true, want false")
	}
}

func sampleRecord() *domain.Geolocation {
	u := "example.com"
	return &domain.Geolocation{
		IP:         "134.201.250.155",
		URL:        &u,
		Latitude:   34.0453,
		Longitude:  -118.2413,
		City:       "Los Angeles",
		Region:     "California",
		Country:    "United States",
		Continent:  "North America",
		PostalCode: "90013",
		Timezone:   "America/Los_Angeles",
		ISP:        "Example ISP",
	}
}

func newTestRepo(q Querier) *GeolocationRepoPG {
	return NewGeolocationRepo(q, zerolog.New(io.Discard))
}

func boolPtr(v bool) *bool { return &v }

// geolocationRow builds a pgx.Row that scans the given record, appending the
// upsert inserted flag when provided.
func geolocationRow(t *testing.T, g *domain.Geolocation, inserted *bool) pgx.Row {
	t.Helper()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return scanRow{scan: func(dest ...any) error {
		want := 13
		if inserted != nil {
			want = 14
		}
		if len(dest) != want {
			t.Fatalf("scan dest = %d, want %d", len(dest), want)
		}
		*(dest[0].(*string)) = g.IP
		*(dest[1].(**string)) = g.URL
		*(dest[2].(*float64)) = g.Latitude
		*(dest[3].(*float64)) = g.Longitude
		*(dest[4].(*string)) = g.City
		*(dest[5].(*string)) = g.Region
		*(dest[6].(*string)) = g.Country
		*(dest[7].(*string)) = g.Continent
		*(dest[8].(*string)) = g.PostalCode
		*(dest[9].(*string)) = g.Timezone
		*(dest[10].(*string)) = g.ISP
		*(dest[11].(*time.Time)) = now
		*(dest[12].(*time.Time)) = now
		if inserted != nil {
			*(dest[13].(*bool)) = *inserted
		}
		return nil
	}}
}

type fakeQuerier struct {
	exec     func(query string, args ...any) (pgconn.CommandTag, error)
	queryRow func(query string, args ...any) pgx.Row
}

func (f *fakeQuerier) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if f.exec == nil {
		return pgconn.CommandTag{}, errors.New("unexpected Exec")
	}
	return f.exec(query, args...)
}

func (f *fakeQuerier) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if f.queryRow == nil {
		return errRow{err: errors.New("unexpected QueryRow")}
	}
	return f.queryRow(query, args...)
}

type scanRow struct {
	scan func(dest ...any) error
}

func (r scanRow) Scan(dest ...any) error { return r.scan(dest...) }

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }
