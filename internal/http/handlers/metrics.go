package handlers

import "net/http"

// Dashboard24h returns the most recent day of usage counters.
func (a *App) Dashboard24h(w http.ResponseWriter, r *http.Request) {
	if a.Usage == nil {
		a.error(w, http.StatusServiceUnavailable, "capability_disabled", "usage metrics are not configured")
		return
	}
	summary, err := a.Usage.LatestSummary(r.Context())
	if err != nil {
		a.Log.Error().Err(err).Msg("usage summary query failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load usage metrics")
		return
	}
	a.json(w, http.StatusOK, summary)
}
