// Package enhance produces a styled, professional rendition of a product
// photo. The primary path asks the Gemini image model for a re-shoot; when
// that degrades, deterministic local filters approximate the style so the
// workflow always has an image to show.
package enhance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"kalakarigar/internal/memo"
	"kalakarigar/internal/providers/genai"
)

// Style names the supported enhancement looks.
type Style string

const (
	StyleVibrant Style = "Vibrant"
	StyleStudio  Style = "Studio"
	StyleFestive Style = "Festive"
)

const (
	minSide = 64
	maxSide = 4096
	maxEdge = 2048
)

// Source identifies which path produced the returned image.
const (
	SourceGemini   = "gemini"
	SourceFilters  = "filters"
	SourceOriginal = "original"
)

var (
	// ErrInvalidDimensions is returned for images outside [64, 4096] per side.
	ErrInvalidDimensions = errors.New("enhance: image dimensions out of range")
	// ErrUndecodable is returned when the upload is not a decodable image.
	ErrUndecodable = errors.New("enhance: image could not be decoded")
)

var stylePrompts = map[Style]string{
	StyleVibrant: "A vibrant, professional product photograph of the subject. Enhance the colors to be more vivid and ensure the focus is sharp. The image should look bright and high-contrast, suitable for an e-commerce website.",
	StyleStudio:  "A professional studio product shot of the subject against a clean, minimalist, light-gray background. The lighting should be soft and even, highlighting the texture and details of the craftsmanship. The final image should look elegant and high-end.",
	StyleFestive: "A festive-themed product photograph of the subject. The background should have warm, celebratory elements like soft bokeh lights or subtle traditional patterns. The lighting should be warm and inviting, evoking a sense of celebration.",
}

// NormalizeStyle maps free-form input onto a supported style. Unknown values
// become Vibrant.
func NormalizeStyle(style string) Style {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "studio":
		return StyleStudio
	case "festive":
		return StyleFestive
	default:
		return StyleVibrant
	}
}

// ImageModel is the slice of the genai client the enhancer depends on.
type ImageModel interface {
	GenerateImage(ctx context.Context, req genai.ImageRequest) ([]byte, string, error)
}

// Result carries the enhanced PNG and which path produced it.
type Result struct {
	Image  []byte
	Source string
	Style  Style
	Cached bool
}

// Options configures an Enhancer.
type Options struct {
	Model    ImageModel
	MemoSize int
	MemoTTL  time.Duration
	Timeout  time.Duration
}

// Enhancer runs the optimize → model → filter-fallback pipeline.
type Enhancer struct {
	model   ImageModel
	cache   *memo.Cache[Result]
	timeout time.Duration
}

// NewEnhancer constructs an Enhancer. A nil model routes every request to
// the filter fallback.
func NewEnhancer(opts Options) *Enhancer {
	size := opts.MemoSize
	if size <= 0 {
		size = 64
	}
	ttl := opts.MemoTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Enhancer{
		model:   opts.Model,
		cache:   memo.New[Result](size, ttl),
		timeout: timeout,
	}
}

// Enhance validates and optimizes the upload, then produces a styled
// rendition. It only errors on an unusable input image; every downstream
// failure degrades to filters and finally to the optimized original.
func (e *Enhancer) Enhance(ctx context.Context, imageBytes []byte, styleName string) (Result, error) {
	style := NormalizeStyle(styleName)

	src, err := decodeAndValidate(imageBytes)
	if err != nil {
		return Result{}, err
	}

	key := memo.Key(imageBytes, []byte(style))
	if cached, ok := e.cache.Get(key); ok {
		cached.Cached = true
		return cached, nil
	}

	optimized := optimize(src)

	result := e.enhance(ctx, optimized, style)
	result.Style = style
	e.cache.Set(key, result)
	return result, nil
}

func (e *Enhancer) enhance(ctx context.Context, optimized *image.NRGBA, style Style) Result {
	optimizedPNG, err := encodePNG(optimized)
	if err != nil {
		// Nothing downstream can work without bytes; this cannot happen for
		// an in-memory NRGBA but the contract stays total.
		return Result{Image: nil, Source: SourceOriginal}
	}

	if e.model != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		data, _, err := e.model.GenerateImage(callCtx, genai.ImageRequest{
			Prompt:    stylePrompts[style],
			Image:     optimizedPNG,
			ImageMIME: "image/png",
		})
		cancel()
		if err == nil {
			if _, decodeErr := imaging.Decode(bytes.NewReader(data)); decodeErr == nil {
				return Result{Image: data, Source: SourceGemini}
			}
		}
	}

	filtered := applyStyleFilters(optimized, style)
	if filtered != nil {
		if data, err := encodePNG(filtered); err == nil {
			return Result{Image: data, Source: SourceFilters}
		}
	}
	return Result{Image: optimizedPNG, Source: SourceOriginal}
}

func decodeAndValidate(imageBytes []byte) (image.Image, error) {
	if len(imageBytes) == 0 {
		return nil, ErrUndecodable
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, ErrUndecodable
	}
	if cfg.Width < minSide || cfg.Height < minSide || cfg.Width > maxSide || cfg.Height > maxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	src, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, ErrUndecodable
	}
	return src, nil
}

// optimize flattens transparency onto white, caps the longest edge at 2048,
// and applies a light sharpen.
func optimize(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	flattened := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flattened = imaging.Overlay(flattened, src, image.Pt(0, 0), 1.0)

	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		flattened = imaging.Fit(flattened, maxEdge, maxEdge, imaging.Lanczos)
	}
	return imaging.Sharpen(flattened, 0.3)
}

// applyStyleFilters approximates each style with deterministic local
// adjustments.
func applyStyleFilters(src *image.NRGBA, style Style) *image.NRGBA {
	switch style {
	case StyleStudio:
		out := imaging.Sharpen(src, 1.0)
		out = imaging.AdjustBrightness(out, 5)
		return imaging.AdjustContrast(out, 10)
	case StyleFestive:
		out := imaging.AdjustSaturation(src, 20)
		out = imaging.AdjustBrightness(out, 15)
		warm := imaging.New(out.Bounds().Dx(), out.Bounds().Dy(), color.NRGBA{R: 255, G: 147, B: 41, A: 255})
		return imaging.Overlay(out, warm, image.Pt(0, 0), 0.10)
	default: // Vibrant
		out := imaging.AdjustSaturation(src, 30)
		out = imaging.AdjustContrast(out, 20)
		return imaging.AdjustBrightness(out, 10)
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
