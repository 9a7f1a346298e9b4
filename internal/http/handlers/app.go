// Package handlers exposes the guided workflow over a JSON API. Handlers
// orchestrate the adapters and feed their results into the session state
// machine; all domain rules live below this layer.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"kalakarigar/internal/adapter/repo"
	"kalakarigar/internal/domain"
	"kalakarigar/internal/export"
	"kalakarigar/internal/infra"
	"kalakarigar/internal/providers/content"
	"kalakarigar/internal/providers/enhance"
	"kalakarigar/internal/providers/vision"
	"kalakarigar/internal/providers/voice"
	"kalakarigar/internal/storage"
	"kalakarigar/internal/workflow"
)

// ArtisanSaver persists a validated draft and returns its record id.
type ArtisanSaver interface {
	Save(ctx context.Context, draft *domain.ProductDraft) (string, error)
}

// UsageRecorder tracks daily product usage counters.
type UsageRecorder interface {
	IncrementCounters(ctx context.Context, day time.Time, counters map[string]int) error
	LatestSummary(ctx context.Context) (*repo.UsageDaily, error)
}

// DriveFactory builds a Drive client bound to one artisan's token.
type DriveFactory func(ctx context.Context, ts oauth2.TokenSource) (export.DriveAPI, error)

// App carries every dependency the handlers need. Nil optional dependencies
// mean the matching capability is disabled.
type App struct {
	Cfg *infra.Config
	Log infra.Logger

	Sessions *workflow.Store

	Content     *content.Generator
	Enhancer    *enhance.Enhancer
	Transcriber *voice.Transcriber
	Translator  *voice.Translator
	Tags        *vision.Suggester

	Uploader *storage.Uploader
	Artisans ArtisanSaver
	Usage    UsageRecorder

	Auth     *export.Authenticator
	NewDrive DriveFactory

	// Capabilities reports each optional capability's state for /healthz.
	Capabilities map[string]string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// sessionID pulls the session id from the route, falling back to the
// X-Session-ID header.
func sessionID(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return r.Header.Get("X-Session-ID")
}

// withSession runs fn on the request's session, translating a missing
// session into a 404. It reports whether fn ran.
func (a *App) withSession(w http.ResponseWriter, r *http.Request, fn func(*workflow.SessionState) error) bool {
	err := a.Sessions.With(sessionID(r), fn)
	if errors.Is(err, workflow.ErrSessionNotFound) {
		a.error(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return false
	}
	if err != nil {
		a.Log.Error().Err(err).Msg("session access failed")
		a.error(w, http.StatusInternalServerError, "internal", "session access failed")
		return false
	}
	return true
}

// countUsage bumps a daily counter without blocking the request path.
func (a *App) countUsage(keys ...string) {
	if a.Usage == nil || len(keys) == 0 {
		return
	}
	counters := make(map[string]int, len(keys))
	for _, key := range keys {
		counters[key]++
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Usage.IncrementCounters(ctx, time.Now().UTC(), counters); err != nil {
			a.Log.Warn().Err(err).Msg("usage counter update failed")
		}
	}()
}

// sessionView is the JSON shape of a session returned to the UI.
type sessionView struct {
	ID             string                    `json:"id"`
	CurrentStep    int                       `json:"current_step"`
	CurrentStepKey string                    `json:"current_step_key"`
	CompletedSteps []int                     `json:"completed_steps"`
	Draft          draftView                 `json:"draft"`
	Transcript     *workflow.TranscriptStage `json:"staged_transcript,omitempty"`
	Profile        *workflow.UserProfile     `json:"profile,omitempty"`
	Authenticated  bool                      `json:"authenticated"`
	LastExportLink string                    `json:"last_export_link,omitempty"`
}

type draftView struct {
	ArtisanName      string                   `json:"artisan_name"`
	CraftType        string                   `json:"craft_type"`
	Description      string                   `json:"description"`
	Materials        string                   `json:"materials"`
	Dimensions       string                   `json:"dimensions"`
	Tags             []string                 `json:"tags"`
	SuggestedTags    []string                 `json:"suggested_tags,omitempty"`
	HasProductImage  bool                     `json:"has_product_image"`
	HasEnhancedImage bool                     `json:"has_enhanced_image"`
	ProductImageURL  string                   `json:"product_image_url,omitempty"`
	UploadedFileName string                   `json:"uploaded_file_name,omitempty"`
	GeneratedContent *domain.GeneratedContent `json:"generated_content,omitempty"`
}

func viewOf(st *workflow.SessionState) sessionView {
	var completed []int
	for _, s := range st.CompletedSteps() {
		completed = append(completed, int(s))
	}
	return sessionView{
		ID:             st.ID,
		CurrentStep:    int(st.CurrentStep),
		CurrentStepKey: st.CurrentStep.String(),
		CompletedSteps: completed,
		Draft: draftView{
			ArtisanName:      st.Draft.ArtisanName,
			CraftType:        st.Draft.CraftType,
			Description:      st.Draft.Description,
			Materials:        st.Draft.Materials,
			Dimensions:       st.Draft.Dimensions,
			Tags:             st.Draft.Tags,
			SuggestedTags:    st.Draft.SuggestedTags,
			HasProductImage:  st.Draft.HasProductImage(),
			HasEnhancedImage: st.Draft.HasEnhancedImage(),
			ProductImageURL:  st.Draft.ProductImageURL,
			UploadedFileName: st.Draft.UploadedFileName,
			GeneratedContent: st.Draft.GeneratedContent,
		},
		Transcript:     st.StagedTranscript,
		Profile:        st.Profile,
		Authenticated:  st.Authenticated(),
		LastExportLink: st.LastExportLink,
	}
}
