// Package content turns a product draft plus photo into a marketing kit via
// the Gemini text model, with a deterministic local fallback when the model
// misbehaves.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kalakarigar/internal/domain"
	"kalakarigar/internal/memo"
	"kalakarigar/internal/providers/genai"
)

const (
	geminiProviderName   = "gemini"
	fallbackProviderName = "fallback"
)

// ErrMissingInputs is returned when the draft lacks the product image or
// craft type the generation prompt is built around.
var ErrMissingInputs = errors.New("content: product image and craft type are required")

// Model is the slice of the genai client the generator depends on.
type Model interface {
	GenerateText(ctx context.Context, req genai.TextRequest) (string, error)
}

// Result is what a generation attempt produced and where it came from.
type Result struct {
	Content  *domain.GeneratedContent
	Provider string
	Reason   string // populated when Provider is "fallback"
	Cached   bool
}

// Options configures a Generator.
type Options struct {
	Model    Model
	MemoSize int
	MemoTTL  time.Duration
}

// Generator orchestrates prompt building, reply repair, validation, and
// fallback substitution.
type Generator struct {
	model Model
	cache *memo.Cache[Result]
}

// NewGenerator constructs a Generator. A nil model means every request takes
// the fallback path, which keeps the workflow usable without the capability.
func NewGenerator(opts Options) *Generator {
	size := opts.MemoSize
	if size <= 0 {
		size = 256
	}
	ttl := opts.MemoTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Generator{
		model: opts.Model,
		cache: memo.New[Result](size, ttl),
	}
}

// Generate produces a marketing kit for the draft. It never returns a nil
// kit on success: model failures of any kind yield the deterministic
// fallback built from the draft itself. The only error case is a draft that
// fails the adapter's preconditions.
func (g *Generator) Generate(ctx context.Context, draft *domain.ProductDraft) (Result, error) {
	if draft == nil || !draft.HasProductImage() || strings.TrimSpace(draft.CraftType) == "" {
		return Result{}, ErrMissingInputs
	}

	key := memoKey(draft)
	if cached, ok := g.cache.Get(key); ok {
		cached.Cached = true
		return cached, nil
	}

	result := g.generate(ctx, draft)
	g.cache.Set(key, result)
	return result, nil
}

func (g *Generator) generate(ctx context.Context, draft *domain.ProductDraft) Result {
	if g.model == nil {
		return fallbackResult(draft, "model_unavailable")
	}

	reply, err := g.model.GenerateText(ctx, genai.TextRequest{
		Instruction: buildInstruction(draft),
		Image:       draft.ProductImage,
		ImageMIME:   draft.ProductImageMIME,
		WantJSON:    true,
	})
	if err != nil {
		return fallbackResult(draft, "model_error")
	}

	kit, err := parseKit(reply)
	if err != nil {
		return fallbackResult(draft, "parse_error")
	}
	if !kit.Valid() {
		return fallbackResult(draft, "quality_check")
	}
	return Result{Content: kit, Provider: geminiProviderName}
}

func fallbackResult(draft *domain.ProductDraft, reason string) Result {
	return Result{
		Content:  Fallback(draft),
		Provider: fallbackProviderName,
		Reason:   reason,
	}
}

func memoKey(draft *domain.ProductDraft) string {
	return memo.Key(
		draft.ProductImage,
		[]byte(draft.ArtisanName),
		[]byte(draft.CraftType),
		[]byte(draft.Description),
		[]byte(draft.Materials),
		[]byte(draft.Dimensions),
		[]byte(strings.Join(draft.Tags, "\x1f")),
	)
}

func buildInstruction(draft *domain.ProductDraft) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are an expert e-commerce marketing assistant for an Indian artisan named %s. ", orNA(draft.ArtisanName))
	sb.WriteString("Generate a complete marketing kit from the attached product photo and the artisan's own words. ")
	sb.WriteString("Respond strictly with JSON containing exactly three keys: ")
	sb.WriteString(`{"product_description":string,"social_media_captions":string[],"hashtags":string[]}`)
	fmt.Fprintf(sb, ". Craft type: %s. Product description: %s. Materials used: %s. Dimensions: %s. Suggested tags: %s. ",
		orNA(draft.CraftType), orNA(draft.Description), orNA(draft.Materials), orNA(draft.Dimensions), orNA(strings.Join(draft.Tags, ", ")))
	sb.WriteString("Refine the description into an evocative paragraph of 80-100 words, create 2 engaging captions, and provide 10-15 relevant hashtags weaving in the suggested tags.")
	return sb.String()
}

func orNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}

type kitPayload struct {
	ProductDescription  json.RawMessage `json:"product_description"`
	SocialMediaCaptions json.RawMessage `json:"social_media_captions"`
	Hashtags            json.RawMessage `json:"hashtags"`
}

// parseKit repairs and decodes the model reply. All three keys must be
// present; captions and hashtags tolerate scalar values, which are coerced
// into sequences.
func parseKit(raw string) (*domain.GeneratedContent, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, errors.New("content: empty payload")
	}
	var payload kitPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}
	if payload.ProductDescription == nil || payload.SocialMediaCaptions == nil || payload.Hashtags == nil {
		return nil, errors.New("content: missing keys")
	}

	var description string
	if err := json.Unmarshal(payload.ProductDescription, &description); err != nil {
		return nil, err
	}
	captions, err := coerceSequence(payload.SocialMediaCaptions, false)
	if err != nil {
		return nil, err
	}
	hashtags, err := coerceSequence(payload.Hashtags, true)
	if err != nil {
		return nil, err
	}

	return &domain.GeneratedContent{
		ProductDescription:  strings.TrimSpace(description),
		SocialMediaCaptions: captions,
		Hashtags:            hashtags,
	}, nil
}

// coerceSequence accepts either a JSON array of strings or a bare string.
// When splitScalar is set, a bare string is split on whitespace (hashtag
// lists often come back space-separated); otherwise it becomes a
// single-element sequence.
func coerceSequence(raw json.RawMessage, splitScalar bool) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := list[:0]
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
	var scalar string
	if err := json.Unmarshal(raw, &scalar); err != nil {
		return nil, err
	}
	scalar = strings.TrimSpace(scalar)
	if scalar == "" {
		return nil, nil
	}
	if splitScalar {
		return strings.Fields(scalar), nil
	}
	return []string{scalar}, nil
}
