// Package voice turns artisan voice notes into editable product descriptions.
// Audio goes through Google Speech-to-Text, and non-English transcripts can
// be translated to English while keeping the detected source language.
package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	speech "google.golang.org/api/speech/v1"

	"kalakarigar/internal/domain"
)

// ErrNoSpeech is returned when recognition succeeds but hears nothing usable.
var ErrNoSpeech = errors.New("voice: no speech recognized")

// Recognizer is the slice of the Speech-to-Text API the transcriber uses.
type Recognizer interface {
	Recognize(ctx context.Context, req *speech.RecognizeRequest) (*speech.RecognizeResponse, error)
}

// APIRecognizer calls the real Speech-to-Text service.
type APIRecognizer struct {
	Service *speech.Service
}

func (a *APIRecognizer) Recognize(ctx context.Context, req *speech.RecognizeRequest) (*speech.RecognizeResponse, error) {
	return a.Service.Speech.Recognize(req).Context(ctx).Do()
}

// Transcript is one recognized voice note.
type Transcript struct {
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence"`
	LowConfidence bool    `json:"low_confidence"`
	LanguageCode  string  `json:"language_code"`
}

// TranscriberOptions configures a Transcriber.
type TranscriberOptions struct {
	Recognizer    Recognizer
	MaxBytes      int64
	MinConfidence float64
}

// Transcriber validates an audio upload and runs it through recognition.
type Transcriber struct {
	rec           Recognizer
	maxBytes      int64
	minConfidence float64
}

func NewTranscriber(opts TranscriberOptions) *Transcriber {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	minConf := opts.MinConfidence
	if minConf <= 0 {
		minConf = 0.6
	}
	return &Transcriber{rec: opts.Recognizer, maxBytes: maxBytes, minConfidence: minConf}
}

// Transcribe recognizes speech in the uploaded audio. Oversized uploads are
// rejected before any network call. Low-confidence results are flagged, not
// discarded; the artisan decides whether to keep them.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType, languageCode string) (Transcript, error) {
	if len(audio) == 0 {
		return Transcript{}, fmt.Errorf("%w: audio payload", domain.ErrEmptyInput)
	}
	if int64(len(audio)) > t.maxBytes {
		return Transcript{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrAudioTooLarge, len(audio), t.maxBytes)
	}
	if t.rec == nil {
		return Transcript{}, fmt.Errorf("%w: speech recognizer not configured", domain.ErrCapabilityDisabled)
	}
	if languageCode == "" {
		languageCode = "en-US"
	}

	content, encoding, sampleRate := prepareAudio(audio, mimeType)

	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               languageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(content),
		},
	}

	resp, err := t.rec.Recognize(ctx, req)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: speech recognize: %v", domain.ErrProviderFailure, err)
	}

	var (
		parts      []string
		confidence float64
		scored     int
	)
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		top := result.Alternatives[0]
		if strings.TrimSpace(top.Transcript) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(top.Transcript))
		if top.Confidence > 0 {
			confidence += top.Confidence
			scored++
		}
	}
	if len(parts) == 0 {
		return Transcript{}, ErrNoSpeech
	}
	if scored > 0 {
		confidence /= float64(scored)
	}

	return Transcript{
		Text:          strings.Join(parts, " "),
		Confidence:    confidence,
		LowConfidence: scored > 0 && confidence < t.minConfidence,
		LanguageCode:  languageCode,
	}, nil
}

// prepareAudio picks the recognition encoding for the upload. WAV is
// normalized locally; compressed containers are declared and sent verbatim.
func prepareAudio(audio []byte, mimeType string) (content []byte, encoding string, sampleRate int64) {
	mimeType = strings.ToLower(mimeType)
	isWAV := strings.Contains(mimeType, "wav") ||
		(len(audio) >= 4 && string(audio[:4]) == "RIFF")
	if isWAV {
		if normalized, err := normalizeWAV(audio); err == nil {
			return normalized, "LINEAR16", targetSampleRate
		}
	}
	switch {
	case strings.Contains(mimeType, "webm"):
		return audio, "WEBM_OPUS", 48000
	case strings.Contains(mimeType, "ogg"):
		return audio, "OGG_OPUS", 48000
	case strings.Contains(mimeType, "flac"):
		return audio, "FLAC", 0
	default:
		return audio, "ENCODING_UNSPECIFIED", 0
	}
}
