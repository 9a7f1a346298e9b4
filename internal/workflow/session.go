package workflow

import (
	"time"

	"golang.org/x/oauth2"

	"kalakarigar/internal/domain"
)

// TranscriptStage holds a voice note between transcription and the artisan's
// confirm/discard decision.
type TranscriptStage struct {
	Text           string  `json:"text"`
	Confidence     float64 `json:"confidence"`
	LowConfidence  bool    `json:"low_confidence"`
	LanguageCode   string  `json:"language_code"`
	Translated     string  `json:"translated,omitempty"`
	SourceLanguage string  `json:"source_language,omitempty"`
}

// UserProfile is the signed-in Google identity attached to a session.
type UserProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// SessionState is everything one artisan's browser session carries. Handlers
// mutate it only through the session store's locking accessors.
type SessionState struct {
	ID          string
	Draft       domain.ProductDraft
	CurrentStep Step
	Completed   map[Step]bool

	StagedTranscript *TranscriptStage

	Token   *oauth2.Token
	Profile *UserProfile

	ArtisanDocID   string
	LastExportLink string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func emptyDraft() domain.ProductDraft {
	return domain.ProductDraft{}
}

// Authenticated reports whether a usable Drive sign-in is attached.
func (st *SessionState) Authenticated() bool {
	return st != nil && st.Token != nil && st.Token.AccessToken != ""
}

// StageTranscript replaces any pending transcript with a new one.
func (st *SessionState) StageTranscript(stage TranscriptStage) {
	st.StagedTranscript = &stage
}

// ConfirmTranscript moves the staged text (translated form preferred) into
// the draft description and clears the stage. It reports whether anything
// was staged.
func (st *SessionState) ConfirmTranscript() bool {
	if st.StagedTranscript == nil {
		return false
	}
	text := st.StagedTranscript.Translated
	if text == "" {
		text = st.StagedTranscript.Text
	}
	st.Draft.Description = text
	st.StagedTranscript = nil
	return true
}

// DiscardTranscript drops the staged transcript so the artisan can re-record.
func (st *SessionState) DiscardTranscript() {
	st.StagedTranscript = nil
}

// CompletedSteps lists completed steps in order, for the progress sidebar.
func (st *SessionState) CompletedSteps() []Step {
	var steps []Step
	for s := StepOnboarding; s <= StepExport; s++ {
		if st.Completed[s] {
			steps = append(steps, s)
		}
	}
	return steps
}
