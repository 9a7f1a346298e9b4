// Package workflow holds the step state machine that walks an artisan from
// product details to a Drive export. The machine is pure state: adapters are
// invoked by the HTTP layer, which feeds their results back in here.
package workflow

import (
	"errors"
	"fmt"
)

// Step identifies one stage of the guided workflow.
type Step int

const (
	StepOnboarding Step = iota + 1
	StepContent
	StepImage
	StepExport
)

func (s Step) String() string {
	switch s {
	case StepOnboarding:
		return "onboarding"
	case StepContent:
		return "content"
	case StepImage:
		return "image"
	case StepExport:
		return "export"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Valid reports whether s names a real step.
func (s Step) Valid() bool {
	return s >= StepOnboarding && s <= StepExport
}

var (
	// ErrStepLocked is returned when a gate blocks forward movement.
	ErrStepLocked = errors.New("workflow: step gate not satisfied")
	// ErrInvalidStep is returned for navigation outside the known steps.
	ErrInvalidStep = errors.New("workflow: no such step")
)

// GateError explains why an advance was refused.
func (st *SessionState) gateError(reason string) error {
	return fmt.Errorf("%w: %s", ErrStepLocked, reason)
}

// CanAdvance checks the gate out of the current step without moving.
func (st *SessionState) CanAdvance() error {
	switch st.CurrentStep {
	case StepOnboarding:
		if st.Draft.CraftType == "" {
			return st.gateError("choose a craft type before continuing")
		}
		if !st.Draft.HasProductImage() {
			return st.gateError("upload a product photo before continuing")
		}
	case StepContent:
		if !st.Draft.HasGeneratedContent() {
			return st.gateError("generate your marketing kit before continuing")
		}
	case StepImage:
		if !st.Draft.HasEnhancedImage() {
			return st.gateError("enhance your photo before continuing")
		}
	case StepExport:
		return st.gateError("already at the final step")
	default:
		return ErrInvalidStep
	}
	return nil
}

// Advance moves to the next step if its gate is satisfied, recording the
// current step as completed. Completed steps only ever accumulate.
func (st *SessionState) Advance() error {
	if err := st.CanAdvance(); err != nil {
		return err
	}
	if st.Completed == nil {
		st.Completed = make(map[Step]bool)
	}
	st.Completed[st.CurrentStep] = true
	st.CurrentStep++
	return nil
}

// NavigateTo jumps to a step. Moving backward or to any already-completed
// step is always allowed; moving forward past the next unlocked step is not.
func (st *SessionState) NavigateTo(target Step) error {
	if !target.Valid() {
		return ErrInvalidStep
	}
	if target <= st.CurrentStep || st.Completed[target] {
		st.CurrentStep = target
		return nil
	}
	if target == st.CurrentStep+1 {
		return st.Advance()
	}
	return st.gateError(fmt.Sprintf("complete the %s step first", st.CurrentStep))
}

// Reset starts a new project: draft, progress, and staged transcript are
// cleared while the Drive sign-in is kept.
func (st *SessionState) Reset() {
	st.Draft = emptyDraft()
	st.Completed = make(map[Step]bool)
	st.CurrentStep = StepOnboarding
	st.StagedTranscript = nil
	st.LastExportLink = ""
	st.ArtisanDocID = ""
}
