package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"geoapi/internal/domain"
	"geoapi/internal/infra"
)

// GeolocationService is the application surface the handlers depend on.
type GeolocationService interface {
	GetByIP(ctx context.Context, ip string) (*domain.Geolocation, error)
	GetByURL(ctx context.Context, url string) (*domain.Geolocation, error)
	AddByIP(ctx context.Context, ip string) (*domain.Geolocation, domain.UpsertOutcome, error)
	AddByDomain(ctx context.Context, raw string) (*domain.Geolocation, domain.UpsertOutcome, error)
	DeleteByIP(ctx context.Context, ip string) (bool, error)
	DeleteByURL(ctx context.Context, url string) (bool, error)
}

// Probe reports a dependency's availability for the health endpoint.
type Probe interface {
	Available(ctx context.Context) bool
}

type App struct {
	Geo     GeolocationService
	Store   Probe
	Locator Probe
	Logger  infra.Logger
}

func NewApp(geo GeolocationService, store, locator Probe, logger infra.Logger) *App {
	return &App{Geo: geo, Store: store, Locator: locator, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}
