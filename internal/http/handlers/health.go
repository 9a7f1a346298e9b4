package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if len(a.Capabilities) > 0 {
		body["capabilities"] = a.Capabilities
	}
	a.json(w, http.StatusOK, body)
}
