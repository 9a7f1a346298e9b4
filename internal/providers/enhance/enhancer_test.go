package enhance

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"kalakarigar/internal/providers/genai"
)

type fakeImageModel struct {
	calls int
	data  []byte
	mime  string
	err   error
	last  genai.ImageRequest
}

func (f *fakeImageModel) GenerateImage(_ context.Context, req genai.ImageRequest) ([]byte, string, error) {
	f.calls++
	f.last = req
	return f.data, f.mime, f.err
}

func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeStyle(t *testing.T) {
	cases := []struct {
		in   string
		want Style
	}{
		{"Vibrant", StyleVibrant},
		{"studio", StyleStudio},
		{" FESTIVE ", StyleFestive},
		{"", StyleVibrant},
		{"sepia", StyleVibrant},
	}
	for _, tc := range cases {
		if got := NormalizeStyle(tc.in); got != tc.want {
			t.Errorf("NormalizeStyle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnhanceRejectsBadInput(t *testing.T) {
	e := NewEnhancer(Options{})

	if _, err := e.Enhance(context.Background(), []byte("not an image"), "Vibrant"); !errors.Is(err, ErrUndecodable) {
		t.Fatalf("garbage input: got %v, want ErrUndecodable", err)
	}
	if _, err := e.Enhance(context.Background(), nil, "Vibrant"); !errors.Is(err, ErrUndecodable) {
		t.Fatalf("nil input: got %v, want ErrUndecodable", err)
	}
	if _, err := e.Enhance(context.Background(), testPNG(t, 32, 32, color.White), "Vibrant"); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("tiny input: got %v, want ErrInvalidDimensions", err)
	}
}

func TestEnhanceUsesModelWhenItProducesAnImage(t *testing.T) {
	want := testPNG(t, 80, 80, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
	model := &fakeImageModel{data: want, mime: "image/png"}
	e := NewEnhancer(Options{Model: model})

	res, err := e.Enhance(context.Background(), testPNG(t, 100, 100, color.White), "Studio")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if res.Source != SourceGemini {
		t.Fatalf("source = %q, want %q", res.Source, SourceGemini)
	}
	if !bytes.Equal(res.Image, want) {
		t.Fatal("expected the model output to be returned unchanged")
	}
	if model.last.ImageMIME != "image/png" {
		t.Errorf("model received mime %q, want image/png", model.last.ImageMIME)
	}
	if model.last.Prompt != stylePrompts[StyleStudio] {
		t.Errorf("model received the wrong style prompt")
	}
}

func TestEnhanceFallsBackToFilters(t *testing.T) {
	cases := []struct {
		name  string
		model ImageModel
	}{
		{"no model", nil},
		{"model error", &fakeImageModel{err: errors.New("quota exceeded")}},
		{"undecodable reply", &fakeImageModel{data: []byte("garbage"), mime: "image/png"}},
	}
	src := testPNG(t, 120, 90, color.NRGBA{R: 180, G: 90, B: 40, A: 255})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEnhancer(Options{Model: tc.model})
			res, err := e.Enhance(context.Background(), src, "Festive")
			if err != nil {
				t.Fatalf("Enhance: %v", err)
			}
			if res.Source != SourceFilters {
				t.Fatalf("source = %q, want %q", res.Source, SourceFilters)
			}
			if _, derr := png.Decode(bytes.NewReader(res.Image)); derr != nil {
				t.Fatalf("fallback output is not a valid png: %v", derr)
			}
		})
	}
}

func TestUnknownStyleMatchesVibrantOnFallback(t *testing.T) {
	src := testPNG(t, 100, 100, color.NRGBA{R: 40, G: 120, B: 200, A: 255})

	a, err := NewEnhancer(Options{}).Enhance(context.Background(), src, "bogus")
	if err != nil {
		t.Fatalf("Enhance bogus: %v", err)
	}
	b, err := NewEnhancer(Options{}).Enhance(context.Background(), src, "Vibrant")
	if err != nil {
		t.Fatalf("Enhance Vibrant: %v", err)
	}
	if a.Style != StyleVibrant {
		t.Errorf("style = %q, want %q", a.Style, StyleVibrant)
	}
	if !bytes.Equal(a.Image, b.Image) {
		t.Error("unknown style should produce the same output as Vibrant")
	}
}

func TestEnhanceMemoizesByImageAndStyle(t *testing.T) {
	model := &fakeImageModel{data: testPNG(t, 64, 64, color.White), mime: "image/png"}
	e := NewEnhancer(Options{Model: model, MemoTTL: time.Minute})
	src := testPNG(t, 100, 100, color.White)

	first, err := e.Enhance(context.Background(), src, "Vibrant")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Cached {
		t.Error("first result should not be cached")
	}
	second, err := e.Enhance(context.Background(), src, "Vibrant")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.Cached {
		t.Error("second identical request should hit the cache")
	}
	if model.calls != 1 {
		t.Fatalf("model calls = %d, want 1", model.calls)
	}

	if _, err := e.Enhance(context.Background(), src, "Festive"); err != nil {
		t.Fatalf("different style: %v", err)
	}
	if model.calls != 2 {
		t.Fatalf("model calls after style change = %d, want 2", model.calls)
	}
}
