package voice

import (
	"context"
	"fmt"
	"strings"

	translate "google.golang.org/api/translate/v2"

	"kalakarigar/internal/domain"
)

// Translation is the translated text plus the language the source was
// detected as, so the UI can label the original note.
type Translation struct {
	Text           string `json:"text"`
	DetectedSource string `json:"detected_source"`
}

// Engine performs one text translation.
type Engine interface {
	Translate(ctx context.Context, text, target string) (Translation, error)
}

// GoogleEngine calls the Cloud Translation v2 API.
type GoogleEngine struct {
	Service *translate.Service
}

func (g *GoogleEngine) Translate(ctx context.Context, text, target string) (Translation, error) {
	resp, err := g.Service.Translations.List([]string{text}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return Translation{}, err
	}
	if len(resp.Translations) == 0 {
		return Translation{}, fmt.Errorf("translate: empty response")
	}
	first := resp.Translations[0]
	return Translation{Text: first.TranslatedText, DetectedSource: first.DetectedSourceLanguage}, nil
}

// Translator validates input before handing it to an Engine.
type Translator struct {
	engine Engine
}

func NewTranslator(engine Engine) *Translator {
	return &Translator{engine: engine}
}

// ToEnglish translates a transcript to English. Empty input is rejected
// locally without a network call.
func (t *Translator) ToEnglish(ctx context.Context, text string) (Translation, error) {
	if strings.TrimSpace(text) == "" {
		return Translation{}, fmt.Errorf("%w: nothing to translate", domain.ErrEmptyInput)
	}
	if t.engine == nil {
		return Translation{}, fmt.Errorf("%w: translation not configured", domain.ErrCapabilityDisabled)
	}
	out, err := t.engine.Translate(ctx, text, "en")
	if err != nil {
		return Translation{}, fmt.Errorf("%w: translate: %v", domain.ErrProviderFailure, err)
	}
	return out, nil
}
