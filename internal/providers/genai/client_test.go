package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "test-key",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("NewClient succeeded without an api key")
	}
}

func TestGenerateTextSendsInlineImage(t *testing.T) {
	var captured geminiGenerateContentRequest
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(200, `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`), nil
	})

	text, err := client.GenerateText(context.Background(), TextRequest{
		Instruction: "describe",
		Image:       []byte{0xFF, 0xD8},
		ImageMIME:   "image/jpeg",
		WantJSON:    true,
	})
	if err != nil {
		t.Fatalf("GenerateText returned error: %v", err)
	}
	if text != "hello" {
		t.Fatalf("text = %q, want %q", text, "hello")
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil {
		t.Fatalf("expected text+image parts, got %+v", parts)
	}
	if captured.GenerationConfig == nil || captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("expected json response mime type, got %+v", captured.GenerationConfig)
	}
}

func TestGenerateTextNoContent(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"candidates":[]}`), nil
	})
	if _, err := client.GenerateText(context.Background(), TextRequest{Instruction: "x"}); !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestGenerateTextSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(429, `{"error":{"code":429,"message":"quota exceeded"}}`), nil
	})
	_, err := client.GenerateText(context.Background(), TextRequest{Instruction: "x"})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v, want quota message", err)
	}
}

func TestGenerateImageReturnsFirstInlinePNG(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	body := `{"candidates":[{"content":{"parts":[` +
		`{"text":"here you go"},` +
		`{"inlineData":{"mimeType":"image/png","data":"` + base64.StdEncoding.EncodeToString(png) + `"}}]}}]}`
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash-image-preview:generateContent") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		return jsonResponse(200, body), nil
	})

	data, mime, err := client.GenerateImage(context.Background(), ImageRequest{
		Prompt:    "enhance",
		Image:     []byte{0xFF, 0xD8},
		ImageMIME: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("mime = %q, want image/png", mime)
	}
	if string(data) != string(png) {
		t.Fatalf("data mismatch: %v", data)
	}
}

func TestGenerateImageNoImagePart(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`), nil
	})
	_, _, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "x", Image: []byte{1}})
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}
