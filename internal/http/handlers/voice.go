package handlers

import (
	"errors"
	"io"
	"net/http"

	"kalakarigar/internal/domain"
	"kalakarigar/internal/middleware"
	"kalakarigar/internal/providers/voice"
	"kalakarigar/internal/workflow"
)

// Transcribe accepts a recorded voice note and stages its transcript on the
// session. The artisan reviews it before it touches the draft.
func (a *App) Transcribe(w http.ResponseWriter, r *http.Request) {
	if a.Transcriber == nil {
		a.error(w, http.StatusServiceUnavailable, "capability_disabled", "voice input is not configured")
		return
	}

	// Session must exist before the audio is read at all.
	if _, err := a.Sessions.Snapshot(sessionID(r)); err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}

	audio, mimeType, err := readUpload(r, "audio", a.Cfg.MaxAudioBytes)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "audio upload missing or unreadable")
		return
	}

	locale := r.URL.Query().Get("language")
	if norm := middleware.NormalizeVoiceLocale(locale); norm != "" {
		locale = norm
	} else {
		locale = middleware.VoiceLocaleFromContext(r.Context())
	}

	transcript, err := a.Transcriber.Transcribe(r.Context(), audio, mimeType, locale)
	switch {
	case errors.Is(err, domain.ErrAudioTooLarge):
		a.error(w, http.StatusRequestEntityTooLarge, "audio_too_large", err.Error())
		return
	case errors.Is(err, domain.ErrEmptyInput):
		a.error(w, http.StatusBadRequest, "empty_audio", "the recording was empty")
		return
	case errors.Is(err, voice.ErrNoSpeech):
		a.error(w, http.StatusUnprocessableEntity, "no_speech", "no speech detected, please re-record")
		return
	case err != nil:
		a.Log.Error().Err(err).Msg("transcription failed")
		a.error(w, http.StatusBadGateway, "transcription_failed", "could not transcribe the recording, please retry")
		return
	}

	stage := workflow.TranscriptStage{
		Text:          transcript.Text,
		Confidence:    transcript.Confidence,
		LowConfidence: transcript.LowConfidence,
		LanguageCode:  transcript.LanguageCode,
	}
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.StageTranscript(stage)
		return nil
	}) {
		return
	}
	a.json(w, http.StatusOK, stage)
}

// ConfirmTranscript translates the staged voice note to English (when it is
// not already English) and applies it as the draft description.
func (a *App) ConfirmTranscript(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Sessions.Snapshot(sessionID(r))
	if err != nil {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	if snap.StagedTranscript == nil {
		a.error(w, http.StatusConflict, "no_transcript", "nothing to confirm, record a voice note first")
		return
	}

	stage := *snap.StagedTranscript
	if a.Translator != nil && stage.LanguageCode != "en-US" {
		translation, terr := a.Translator.ToEnglish(r.Context(), stage.Text)
		if terr != nil {
			a.Log.Warn().Err(terr).Msg("transcript translation failed, keeping original text")
		} else {
			stage.Translated = translation.Text
			stage.SourceLanguage = translation.DetectedSource
		}
	}

	var view sessionView
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.StageTranscript(stage)
		st.ConfirmTranscript()
		view = viewOf(st)
		return nil
	}) {
		return
	}
	a.json(w, http.StatusOK, view)
}

// DiscardTranscript throws the staged voice note away.
func (a *App) DiscardTranscript(w http.ResponseWriter, r *http.Request) {
	var view sessionView
	if !a.withSession(w, r, func(st *workflow.SessionState) error {
		st.DiscardTranscript()
		view = viewOf(st)
		return nil
	}) {
		return
	}
	a.json(w, http.StatusOK, view)
}

// readUpload pulls one file out of a multipart form, or the raw body when
// the request is not multipart. The hard server limit sits above the adapter
// cap so oversized media reaches the adapter and gets its specific error.
func readUpload(r *http.Request, field string, limit int64) ([]byte, string, error) {
	if limit <= 0 {
		limit = 32 << 20
	}
	hardLimit := limit * 2
	r.Body = http.MaxBytesReader(nil, r.Body, hardLimit)

	contentType := r.Header.Get("Content-Type")
	if err := r.ParseMultipartForm(hardLimit); err == nil {
		file, header, ferr := r.FormFile(field)
		if ferr != nil {
			return nil, "", ferr
		}
		defer file.Close()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			return nil, "", rerr
		}
		mime := header.Header.Get("Content-Type")
		if mime == "" {
			mime = contentType
		}
		return data, mime, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
