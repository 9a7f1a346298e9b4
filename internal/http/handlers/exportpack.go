package handlers

import (
	"errors"
	"net/http"

	"kalakarigar/internal/export"
	"kalakarigar/internal/workflow"
)

// Export writes the marketing pack to the artisan's Google Drive. It
// requires a Drive sign-in and an enhanced image; neither precondition
// failing touches Drive at all.
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	if a.Auth == nil || a.NewDrive == nil {
		a.error(w, http.StatusServiceUnavailable, "capability_disabled", "drive export is not configured")
		return
	}

	snap, err := a.Sessions.Snapshot(sessionID(r))
	if err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	if !snap.Authenticated() {
		a.error(w, http.StatusUnauthorized, "not_authenticated", "connect your Google Drive first")
		return
	}
	if !snap.Draft.HasEnhancedImage() {
		a.error(w, http.StatusConflict, "no_enhanced_image", "enhance your photo before exporting")
		return
	}

	ts := a.Auth.TokenSource(r.Context(), snap.Token)
	api, err := a.NewDrive(r.Context(), ts)
	if err != nil {
		a.Log.Error().Err(err).Msg("drive client construction failed")
		a.error(w, http.StatusBadGateway, "export_failed", "could not reach Google Drive, please retry")
		return
	}

	result, err := export.NewExporter(api).Export(r.Context(), &snap.Draft)
	if errors.Is(err, export.ErrNothingToExport) {
		a.error(w, http.StatusConflict, "no_enhanced_image", "enhance your photo before exporting")
		return
	}
	if err != nil {
		a.Log.Error().Err(err).Msg("drive export failed")
		a.error(w, http.StatusBadGateway, "export_failed", "the export did not complete, please retry")
		return
	}

	// The token source refreshes in place; keep the newest token on the
	// session so later exports skip the refresh round-trip.
	refreshed, terr := ts.Token()

	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.LastExportLink = result.FolderLink
		if terr == nil && refreshed != nil {
			st.Token = refreshed
		}
		if st.CurrentStep == workflow.StepExport {
			st.Completed[workflow.StepExport] = true
		}
		return nil
	}) {
		return
	}

	a.countUsage("exports_completed")
	a.json(w, http.StatusOK, result)
}
