package domain

import "context"

// GeolocationStore persists geolocation records keyed by IP.
//
// Upsert must resolve the insert-or-update decision inside the storage engine
// (not via a prior existence check) so that two concurrent calls for the same
// new IP settle to exactly one OutcomeCreated and one OutcomeUpdated.
type GeolocationStore interface {
	Upsert(ctx context.Context, g *Geolocation) (*Geolocation, UpsertOutcome, error)
	Add(ctx context.Context, g *Geolocation) (*Geolocation, error)
	Update(ctx context.Context, g *Geolocation) (*Geolocation, error)
	GetByIP(ctx context.Context, ip string) (*Geolocation, error)
	GetByURL(ctx context.Context, url string) (*Geolocation, error)
	ExistsByIP(ctx context.Context, ip string) (bool, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	DeleteByIP(ctx context.Context, ip string) (bool, error)
	DeleteByURL(ctx context.Context, url string) (bool, error)
	Available(ctx context.Context) bool
}

// GeolocationLocator resolves location data for an IP or domain from an
// external source. Lookups are single-shot; retries belong to the caller's
// infrastructure, not here.
type GeolocationLocator interface {
	LookupIP(ctx context.Context, ip string) (*Geolocation, error)
	LookupDomain(ctx context.Context, name string) (*Geolocation, error)
	Available(ctx context.Context) bool
}
