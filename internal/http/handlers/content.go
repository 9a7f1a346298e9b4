package handlers

import (
	"errors"
	"net/http"

	"kalakarigar/internal/providers/content"
	"kalakarigar/internal/workflow"
)

type contentResponse struct {
	Content  any    `json:"content"`
	Provider string `json:"provider"`
	Reason   string `json:"reason,omitempty"`
	Cached   bool   `json:"cached"`
}

// GenerateContent runs the marketing kit generator against the current draft
// and stores the result. The artisan triggers this explicitly from the
// content step.
func (a *App) GenerateContent(w http.ResponseWriter, r *http.Request) {
	if a.Content == nil {
		a.error(w, http.StatusServiceUnavailable, "capability_disabled", "content generation is not configured")
		return
	}

	snap, err := a.Sessions.Snapshot(sessionID(r))
	if err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}

	result, err := a.Content.Generate(r.Context(), &snap.Draft)
	if errors.Is(err, content.ErrMissingInputs) {
		a.error(w, http.StatusConflict, "missing_inputs", "a product photo and craft type are required first")
		return
	}
	if err != nil {
		a.Log.Error().Err(err).Msg("content generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "content generation failed")
		return
	}

	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.Draft.SetGeneratedContent(result.Content)
		return nil
	}) {
		return
	}

	if result.Provider == "fallback" {
		a.countUsage("kits_generated", "provider_fallbacks")
	} else {
		a.countUsage("kits_generated")
	}
	a.json(w, http.StatusOK, contentResponse{
		Content:  result.Content,
		Provider: result.Provider,
		Reason:   result.Reason,
		Cached:   result.Cached,
	})
}
