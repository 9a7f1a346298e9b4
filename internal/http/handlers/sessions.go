package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kalakarigar/internal/domain"
	"kalakarigar/internal/workflow"
)

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	state := a.Sessions.Create()
	a.countUsage("sessions_started")
	a.json(w, http.StatusCreated, viewOf(&state))
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	var view sessionView
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		view = viewOf(st)
		return nil
	}) {
		return
	}
	a.json(w, http.StatusOK, view)
}

type draftUpdateRequest struct {
	ArtisanName *string   `json:"artisan_name"`
	CraftType   *string   `json:"craft_type"`
	Description *string   `json:"description"`
	Materials   *string   `json:"materials"`
	Dimensions  *string   `json:"dimensions"`
	Tags        *[]string `json:"tags"`
}

// UpdateDraft applies partial field edits. Only the fields present in the
// payload change; everything else keeps its previous value.
func (a *App) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var view sessionView
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		if req.ArtisanName != nil {
			st.Draft.ArtisanName = strings.TrimSpace(*req.ArtisanName)
		}
		if req.CraftType != nil {
			st.Draft.CraftType = strings.TrimSpace(*req.CraftType)
		}
		if req.Description != nil {
			st.Draft.Description = strings.TrimSpace(*req.Description)
		}
		if req.Materials != nil {
			st.Draft.Materials = strings.TrimSpace(*req.Materials)
		}
		if req.Dimensions != nil {
			st.Draft.Dimensions = strings.TrimSpace(*req.Dimensions)
		}
		if req.Tags != nil {
			st.Draft.SetTags(*req.Tags)
		}
		view = viewOf(st)
		return nil
	}) {
		return
	}
	a.json(w, http.StatusOK, view)
}

// Advance moves the session to the next step. Leaving the first step also
// persists the draft; a persistence failure aborts the transition so the
// artisan can retry without losing anything.
func (a *App) Advance(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	snap, err := a.Sessions.Snapshot(id)
	if errors.Is(err, workflow.ErrSessionNotFound) {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	} else if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "session access failed")
		return
	}

	if gateErr := snap.CanAdvance(); gateErr != nil {
		a.error(w, http.StatusConflict, "step_locked", gateErr.Error())
		return
	}

	var docID string
	if snap.CurrentStep == workflow.StepOnboarding && a.Artisans != nil {
		docID, err = a.Artisans.Save(r.Context(), &snap.Draft)
		if errors.Is(err, domain.ErrMissingFields) {
			a.error(w, http.StatusUnprocessableEntity, "missing_fields", err.Error())
			return
		}
		if err != nil {
			a.Log.Error().Err(err).Msg("draft persistence failed")
			a.error(w, http.StatusBadGateway, "persistence_failed", "could not save your details, please retry")
			return
		}
	}

	var (
		view   sessionView
		advErr error
	)
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		advErr = st.Advance()
		if advErr != nil {
			return nil
		}
		if docID != "" {
			st.ArtisanDocID = docID
		}
		view = viewOf(st)
		return nil
	}) {
		return
	}
	if advErr != nil {
		a.error(w, http.StatusConflict, "step_locked", advErr.Error())
		return
	}
	a.json(w, http.StatusOK, view)
}

type navigateRequest struct {
	Step int `json:"step"`
}

func (a *App) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var (
		view   sessionView
		navErr error
	)
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		navErr = st.NavigateTo(workflow.Step(req.Step))
		if navErr == nil {
			view = viewOf(st)
		}
		return nil
	}) {
		return
	}
	switch {
	case errors.Is(navErr, workflow.ErrInvalidStep):
		a.error(w, http.StatusBadRequest, "invalid_step", navErr.Error())
	case errors.Is(navErr, workflow.ErrStepLocked):
		a.error(w, http.StatusConflict, "step_locked", navErr.Error())
	case navErr != nil:
		a.error(w, http.StatusInternalServerError, "internal", navErr.Error())
	default:
		a.json(w, http.StatusOK, view)
	}
}

// Reset starts a new project in the same session, keeping the Drive sign-in.
func (a *App) Reset(w http.ResponseWriter, r *http.Request) {
	var view sessionView
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.Reset()
		view = viewOf(st)
		return nil
	}) {
		return
	}
	a.json(w, http.StatusOK, view)
}
