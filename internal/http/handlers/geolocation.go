package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"

	"geoapi/internal/domain"
)

type geolocationRequest struct {
	IPAddress string `json:"ip_address"`
	URL       string `json:"url"`
}

// GeolocationAdd refreshes a record from the external provider and upserts
// it, answering 201 for a fresh row and 200 for an overwritten one.
func (a *App) GeolocationAdd(w http.ResponseWriter, r *http.Request) {
	var req geolocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ip, ok := a.validateTarget(w, req.IPAddress, req.URL)
	if !ok {
		return
	}

	var (
		stored  *domain.Geolocation
		outcome domain.UpsertOutcome
		err     error
	)
	if ip != "" {
		stored, outcome, err = a.Geo.AddByIP(r.Context(), ip)
	} else {
		stored, outcome, err = a.Geo.AddByDomain(r.Context(), req.URL)
	}
	if err != nil {
		a.geolocationError(w, err)
		return
	}

	code := http.StatusOK
	if outcome == domain.OutcomeCreated {
		code = http.StatusCreated
	}
	a.json(w, code, map[string]any{
		"status": "success",
		"data":   map[string]any{"geolocation": stored, "outcome": outcome},
	})
}

// GeolocationGet reads a stored record by ip_address or url query parameter.
func (a *App) GeolocationGet(w http.ResponseWriter, r *http.Request) {
	ip, name, ok := a.resolveQueryTarget(w, r)
	if !ok {
		return
	}

	var (
		stored *domain.Geolocation
		err    error
	)
	if ip != "" {
		stored, err = a.Geo.GetByIP(r.Context(), ip)
	} else {
		stored, err = a.Geo.GetByURL(r.Context(), name)
	}
	if err != nil {
		a.geolocationError(w, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"geolocation": stored},
	})
}

// GeolocationDelete removes a stored record by ip_address or url query
// parameter, answering 404 when nothing was there.
func (a *App) GeolocationDelete(w http.ResponseWriter, r *http.Request) {
	ip, name, ok := a.resolveQueryTarget(w, r)
	if !ok {
		return
	}

	var (
		removed bool
		err     error
	)
	if ip != "" {
		removed, err = a.Geo.DeleteByIP(r.Context(), ip)
	} else {
		removed, err = a.Geo.DeleteByURL(r.Context(), name)
	}
	if err != nil {
		a.geolocationError(w, err)
		return
	}
	if !removed {
		a.error(w, http.StatusNotFound, "not_found", "geolocation data not found")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"ip_address": ip, "url": name},
	})
}

// validateTarget enforces exactly one of ip_address/url and validates IP
// syntax. It returns the canonical IP text when the target is an address; for
// URL targets the raw input is forwarded and canonicalized downstream.
func (a *App) validateTarget(w http.ResponseWriter, ipAddress, rawURL string) (string, bool) {
	if (ipAddress == "" && rawURL == "") || (ipAddress != "" && rawURL != "") {
		a.error(w, http.StatusUnprocessableEntity, "unprocessable", "provide either ip_address or url, not both")
		return "", false
	}
	if ipAddress == "" {
		return "", true
	}
	addr, err := netip.ParseAddr(ipAddress)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "unprocessable", "ip_address must be a valid IPv4 or IPv6 literal")
		return "", false
	}
	return addr.String(), true
}

// resolveQueryTarget validates get/delete query parameters. The domain is
// canonicalized here at the boundary; the service receives it ready to use.
func (a *App) resolveQueryTarget(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	ipAddress := r.URL.Query().Get("ip_address")
	rawURL := r.URL.Query().Get("url")
	ip, ok := a.validateTarget(w, ipAddress, rawURL)
	if !ok {
		return "", "", false
	}
	if ip != "" {
		return ip, "", true
	}
	name, err := domain.CanonicalDomain(rawURL)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "unprocessable", "url must contain a valid registrable domain")
		return "", "", false
	}
	return "", name, true
}

func (a *App) geolocationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDomain):
		a.error(w, http.StatusUnprocessableEntity, "unprocessable", "url must contain a valid registrable domain")
	case errors.Is(err, domain.ErrGeolocationNotFound):
		a.error(w, http.StatusNotFound, "not_found", "geolocation data not found on external service")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "geolocation data not found")
	case errors.Is(err, domain.ErrStoreUnavailable):
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "database unavailable")
	case errors.Is(err, domain.ErrLookupService):
		a.error(w, http.StatusServiceUnavailable, "lookup_unavailable", "external geolocation service unavailable")
	default:
		a.Logger.Error().Err(err).Msg("unexpected error handling geolocation request")
		a.error(w, http.StatusInternalServerError, "internal", "an unexpected error occurred")
	}
}
