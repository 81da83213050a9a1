package service

import (
	"context"
	"fmt"

	"geoapi/internal/domain"
	"geoapi/internal/infra"
)

// Geolocation coordinates the store and the external locator for each public
// operation. It holds no state across calls. Location data always originates
// from the locator; callers can never supply coordinates of their own.
type Geolocation struct {
	store   domain.GeolocationStore
	locator domain.GeolocationLocator
	logger  infra.Logger
}

// NewGeolocation wires a store and a locator into the application service.
func NewGeolocation(store domain.GeolocationStore, locator domain.GeolocationLocator, logger infra.Logger) *Geolocation {
	return &Geolocation{store: store, locator: locator, logger: logger}
}

// GetByIP reads the stored record for an IP.
func (s *Geolocation) GetByIP(ctx context.Context, ip string) (*domain.Geolocation, error) {
	return s.store.GetByIP(ctx, ip)
}

// GetByURL reads the stored record bound to a canonical domain.
func (s *Geolocation) GetByURL(ctx context.Context, url string) (*domain.Geolocation, error) {
	return s.store.GetByURL(ctx, url)
}

// AddByIP refreshes an IP's record from the external locator and upserts it.
// The store availability probe runs first so an external lookup is never
// wasted on a store that cannot accept the write.
func (s *Geolocation) AddByIP(ctx context.Context, ip string) (*domain.Geolocation, domain.UpsertOutcome, error) {
	if !s.store.Available(ctx) {
		return nil, "", fmt.Errorf("%w: availability probe failed", domain.ErrStoreUnavailable)
	}

	located, err := s.locator.LookupIP(ctx, ip)
	if err != nil {
		return nil, "", err
	}

	stored, outcome, err := s.store.Upsert(ctx, located)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info().Str("ip", stored.IP).Str("outcome", string(outcome)).Msg("geolocation added by ip")
	return stored, outcome, nil
}

// AddByDomain canonicalizes the raw input, refreshes its record from the
// external locator, and upserts it. The stored URL is always the canonical
// input; whatever URL the provider echoes back is discarded.
func (s *Geolocation) AddByDomain(ctx context.Context, raw string) (*domain.Geolocation, domain.UpsertOutcome, error) {
	name, err := domain.CanonicalDomain(raw)
	if err != nil {
		return nil, "", err
	}

	if !s.store.Available(ctx) {
		return nil, "", fmt.Errorf("%w: availability probe failed", domain.ErrStoreUnavailable)
	}

	located, err := s.locator.LookupDomain(ctx, name)
	if err != nil {
		return nil, "", err
	}
	located.URL = &name

	stored, outcome, err := s.store.Upsert(ctx, located)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info().Str("url", name).Str("ip", stored.IP).Str("outcome", string(outcome)).Msg("geolocation added by domain")
	return stored, outcome, nil
}

// DeleteByIP removes the record for an IP, reporting whether one existed.
func (s *Geolocation) DeleteByIP(ctx context.Context, ip string) (bool, error) {
	return s.store.DeleteByIP(ctx, ip)
}

// DeleteByURL removes the records bound to a canonical domain.
func (s *Geolocation) DeleteByURL(ctx context.Context, url string) (bool, error) {
	return s.store.DeleteByURL(ctx, url)
}
