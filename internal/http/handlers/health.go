package handlers

import "net/http"

// Health reports the API and its dependencies. The provider probe treats a
// missing-credentials answer as up, so a misconfigured key does not read as
// an outage.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dbUp := a.Store.Available(ctx)
	providerUp := a.Locator.Available(ctx)

	status := "ok"
	code := http.StatusOK
	if !dbUp || !providerUp {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	a.json(w, code, map[string]any{
		"status": status,
		"components": map[string]any{
			"api":      componentStatus(true),
			"database": componentStatus(dbUp),
			"provider": componentStatus(providerUp),
		},
	})
}

func componentStatus(up bool) map[string]string {
	if up {
		return map[string]string{"status": "ok"}
	}
	return map[string]string{"status": "unavailable"}
}
