package handlers

import (
	"net/http"

	"kalakarigar/internal/workflow"
)

// GoogleAuthURL returns the consent URL for connecting the session to the
// artisan's Google Drive. The session id rides along as the OAuth state.
func (a *App) GoogleAuthURL(w http.ResponseWriter, r *http.Request) {
	if a.Auth == nil {
		a.error(w, http.StatusServiceUnavailable, "capability_disabled", "drive export is not configured")
		return
	}
	id := r.URL.Query().Get("session_id")
	if id == "" {
		id = r.Header.Get("X-Session-ID")
	}
	if _, err := a.Sessions.Snapshot(id); err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"url": a.Auth.AuthURL(id)})
}

// GoogleAuthCallback handles the OAuth redirect: it exchanges the code,
// fetches the profile, and attaches both to the session named by the state
// parameter.
func (a *App) GoogleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if a.Auth == nil {
		a.error(w, http.StatusServiceUnavailable, "capability_disabled", "drive export is not configured")
		return
	}
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "missing code or state")
		return
	}
	if _, err := a.Sessions.Snapshot(state); err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}

	token, err := a.Auth.Exchange(r.Context(), code)
	if err != nil {
		a.Log.Error().Err(err).Msg("oauth code exchange failed")
		a.error(w, http.StatusBadGateway, "auth_failed", "google sign-in failed, please try again")
		return
	}

	var profile *workflow.UserProfile
	if p, perr := a.Auth.Profile(r.Context(), token); perr != nil {
		a.Log.Warn().Err(perr).Msg("userinfo fetch failed")
	} else {
		profile = &workflow.UserProfile{Email: p.Email, Name: p.Name, Picture: p.Picture}
	}

	var view sessionView
	err = a.Sessions.With(state, func(st *workflow.SessionState) error {
		st.Token = token
		if profile != nil {
			st.Profile = profile
		}
		view = viewOf(st)
		return nil
	})
	if err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	a.json(w, http.StatusOK, view)
}
