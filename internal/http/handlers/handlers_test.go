package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	speech "google.golang.org/api/speech/v1"
	visionapi "google.golang.org/api/vision/v1"

	"kalakarigar/internal/adapter/repo"
	"kalakarigar/internal/domain"
	"kalakarigar/internal/export"
	"kalakarigar/internal/http/handlers"
	"kalakarigar/internal/http/httpapi"
	"kalakarigar/internal/infra"
	"kalakarigar/internal/providers/content"
	"kalakarigar/internal/providers/enhance"
	"kalakarigar/internal/providers/vision"
	"kalakarigar/internal/providers/voice"
	"kalakarigar/internal/storage"
	"kalakarigar/internal/workflow"
)

type fakeBlobStore struct{ writes int }

func (f *fakeBlobStore) Write(context.Context, string, []byte, storage.WriteOptions) error {
	f.writes++
	return nil
}
func (f *fakeBlobStore) URL(key string) string { return "https://cdn.test/" + key }

type fakeSaver struct {
	calls int
	err   error
}

func (f *fakeSaver) Save(_ context.Context, draft *domain.ProductDraft) (string, error) {
	f.calls++
	if missing := draft.MissingRequired(); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingFields, strings.Join(missing, ", "))
	}
	if f.err != nil {
		return "", f.err
	}
	return "doc-1", nil
}

type fakeUsage struct{ counters map[string]int }

func (f *fakeUsage) IncrementCounters(_ context.Context, _ time.Time, counters map[string]int) error {
	if f.counters == nil {
		f.counters = make(map[string]int)
	}
	for k, v := range counters {
		f.counters[k] += v
	}
	return nil
}

func (f *fakeUsage) LatestSummary(context.Context) (*repo.UsageDaily, error) {
	return &repo.UsageDaily{Day: "2026-08-30", SessionsStarted: 3}, nil
}

type fakeRecognizer struct {
	calls int
	text  string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ *speech.RecognizeRequest) (*speech.RecognizeResponse, error) {
	f.calls++
	return &speech.RecognizeResponse{Results: []*speech.SpeechRecognitionResult{{
		Alternatives: []*speech.SpeechRecognitionAlternative{{Transcript: f.text, Confidence: 0.92}},
	}}}, nil
}

type fakeAnnotator struct{ labels []string }

func (f *fakeAnnotator) Annotate(context.Context, *visionapi.BatchAnnotateImagesRequest) (*visionapi.BatchAnnotateImagesResponse, error) {
	var anns []*visionapi.EntityAnnotation
	for i, label := range f.labels {
		anns = append(anns, &visionapi.EntityAnnotation{
			Description: label,
			Score:       float64(95-i) / 100,
		})
	}
	return &visionapi.BatchAnnotateImagesResponse{
		Responses: []*visionapi.AnnotateImageResponse{{LabelAnnotations: anns}},
	}, nil
}

type fakeDrive struct {
	folders int
	uploads int
}

func (f *fakeDrive) FindFolder(context.Context, string, string) (string, error) { return "root", nil }
func (f *fakeDrive) CreateFolder(_ context.Context, name, _ string) (export.Folder, error) {
	f.folders++
	return export.Folder{ID: "sub", WebViewLink: "https://drive.test/sub"}, nil
}
func (f *fakeDrive) UploadFile(context.Context, string, string, string, io.Reader) (string, error) {
	f.uploads++
	return "file", nil
}

type env struct {
	app   *handlers.App
	srv   http.Handler
	drive *fakeDrive
	saver *fakeSaver
	rec   *fakeRecognizer
	blob  *fakeBlobStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	blob := &fakeBlobStore{}
	saver := &fakeSaver{}
	rec := &fakeRecognizer{text: "a hand painted clay lamp"}
	drive := &fakeDrive{}

	app := &handlers.App{
		Cfg: &infra.Config{
			MaxAudioBytes:   10 << 20,
			MaxImageBytes:   15 << 20,
			TagSuggestLimit: 5,
		},
		Log:         zerolog.Nop(),
		Sessions:    workflow.NewStore(time.Hour),
		Content:     content.NewGenerator(content.Options{}),
		Enhancer:    enhance.NewEnhancer(enhance.Options{}),
		Transcriber: voice.NewTranscriber(voice.TranscriberOptions{Recognizer: rec, MaxBytes: 10 << 20}),
		Uploader:    storage.NewUploader(blob, "products"),
		Artisans:    saver,
		NewDrive: func(context.Context, oauth2.TokenSource) (export.DriveAPI, error) {
			return drive, nil
		},
	}
	auth, err := export.NewAuthenticator("client-id", "client-secret", "http://localhost/cb")
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	app.Auth = auth

	return &env{
		app:   app,
		srv:   httpapi.NewRouter(app, httpapi.Options{}),
		drive: drive,
		saver: saver,
		rec:   rec,
		blob:  blob,
	}
}

func (e *env) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *env) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return e.do(t, method, path, bytes.NewReader(data), "application/json")
}

func (e *env) createSession(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/sessions", nil, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", rec.Code, rec.Body)
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return body.ID
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body)
	}
	return body
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 190, G: 120, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename, mime string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
	hdr["Content-Type"] = []string{mime}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func (e *env) uploadImage(t *testing.T, id string) {
	t.Helper()
	body, ct := multipartBody(t, "image", "pot.png", "image/png", testPNG(t, 100, 100))
	rec := e.do(t, http.MethodPost, "/v1/sessions/"+id+"/image", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload image: %d %s", rec.Code, rec.Body)
	}
}

func TestUploadOffersMoreTagsThanItPreselects(t *testing.T) {
	e := newEnv(t)
	e.app.Tags = vision.NewSuggester(vision.SuggesterOptions{
		Annotator: &fakeAnnotator{labels: []string{
			"Pottery", "Clay", "Earthenware", "Ceramic", "Art",
			"Craft", "Vase", "Terracotta",
		}},
		MaxResults: e.app.Cfg.TagSuggestLimit * 2,
		Logger:     zerolog.Nop(),
	})
	id := e.createSession(t)

	body, ct := multipartBody(t, "image", "pot.png", "image/png", testPNG(t, 100, 100))
	rec := e.do(t, http.MethodPost, "/v1/sessions/"+id+"/image", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload image: %d %s", rec.Code, rec.Body)
	}
	resp := decodeSession(t, rec)
	suggested := resp["suggested_tags"].([]any)
	preselected := resp["preselected_tags"].([]any)
	if len(suggested) != 8 {
		t.Fatalf("suggested = %d labels, want all 8", len(suggested))
	}
	if len(preselected) != 5 {
		t.Fatalf("preselected = %d labels, want the limit of 5", len(preselected))
	}
	if preselected[0] != "Pottery" {
		t.Errorf("preselected[0] = %v", preselected[0])
	}
}

func TestSessionLifecycle(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	rec := e.do(t, http.MethodGet, "/v1/sessions/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get session: %d", rec.Code)
	}
	body := decodeSession(t, rec)
	if body["current_step_key"] != "onboarding" {
		t.Errorf("step = %v", body["current_step_key"])
	}

	if rec := e.do(t, http.MethodGet, "/v1/sessions/unknown", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: %d, want 404", rec.Code)
	}
}

func TestUpdateDraftPartialAndTagDedupe(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	rec := e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{
		"artisan_name": "Meera Devi",
		"craft_type":   "Pottery",
		"tags":         []string{"Clay", "clay", " handmade ", ""},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update draft: %d %s", rec.Code, rec.Body)
	}
	body := decodeSession(t, rec)
	draft := body["draft"].(map[string]any)
	if draft["artisan_name"] != "Meera Devi" {
		t.Errorf("artisan_name = %v", draft["artisan_name"])
	}
	tags := draft["tags"].([]any)
	if len(tags) != 2 || tags[0] != "Clay" || tags[1] != "handmade" {
		t.Errorf("tags = %v", tags)
	}

	// A second partial update leaves earlier fields intact.
	rec = e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{"materials": "Terracotta"})
	draft = decodeSession(t, rec)["draft"].(map[string]any)
	if draft["craft_type"] != "Pottery" || draft["materials"] != "Terracotta" {
		t.Errorf("draft after partial update = %v", draft)
	}
}

func TestAdvanceGatesAndPersistence(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	// Nothing filled in: gate blocks, nothing persisted.
	rec := e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/advance", map[string]any{})
	if rec.Code != http.StatusConflict {
		t.Fatalf("empty advance: %d, want 409", rec.Code)
	}
	if e.saver.calls != 0 {
		t.Fatal("nothing should have been persisted")
	}

	// Craft + image satisfy the gate, but the record write requires name
	// and description too; the step must not move.
	e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{"craft_type": "Pottery"})
	e.uploadImage(t, id)
	rec = e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/advance", map[string]any{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("advance without name: %d %s, want 422", rec.Code, rec.Body)
	}
	state := decodeSession(t, e.do(t, http.MethodGet, "/v1/sessions/"+id, nil, ""))
	if state["current_step_key"] != "onboarding" {
		t.Fatalf("step moved despite persistence rejection: %v", state["current_step_key"])
	}

	e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{
		"artisan_name": "Meera Devi",
		"description":  "Hand-thrown terracotta pots.",
	})
	rec = e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/advance", map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid advance: %d %s", rec.Code, rec.Body)
	}
	if decodeSession(t, rec)["current_step_key"] != "content" {
		t.Fatal("should be on the content step")
	}
}

func TestGenerateContentFallbackFlow(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	rec := e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/content", map[string]any{})
	if rec.Code != http.StatusConflict {
		t.Fatalf("content without image: %d, want 409", rec.Code)
	}

	e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{
		"craft_type": "Pottery",
		"materials":  "Clay",
	})
	e.uploadImage(t, id)

	rec = e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/content", map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate content: %d %s", rec.Code, rec.Body)
	}
	body := decodeSession(t, rec)
	if body["provider"] != "fallback" {
		t.Errorf("provider = %v, want fallback without a model", body["provider"])
	}
	kit := body["content"].(map[string]any)
	if len(kit["hashtags"].([]any)) < 5 {
		t.Errorf("hashtags = %v, want at least 5", kit["hashtags"])
	}
	if len(kit["product_description"].(string)) < 50 {
		t.Error("fallback description should satisfy the length rule")
	}

	// The kit is now on the session.
	state := decodeSession(t, e.do(t, http.MethodGet, "/v1/sessions/"+id, nil, ""))
	if state["draft"].(map[string]any)["generated_content"] == nil {
		t.Fatal("generated content not stored on the draft")
	}
}

func TestEnhanceAndDownload(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	rec := e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", map[string]any{"style": "Studio"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("enhance without image: %d, want 409", rec.Code)
	}

	e.uploadImage(t, id)
	rec = e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", map[string]any{"style": "Studio"})
	if rec.Code != http.StatusOK {
		t.Fatalf("enhance: %d %s", rec.Code, rec.Body)
	}
	body := decodeSession(t, rec)
	if body["source"] != enhance.SourceFilters {
		t.Errorf("source = %v, want filters without a model", body["source"])
	}

	dl := e.do(t, http.MethodGet, "/v1/sessions/"+id+"/image/enhanced", nil, "")
	if dl.Code != http.StatusOK {
		t.Fatalf("download: %d", dl.Code)
	}
	if ct := dl.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if _, err := png.Decode(bytes.NewReader(dl.Body.Bytes())); err != nil {
		t.Fatalf("download is not a png: %v", err)
	}
}

func TestExportPreconditions(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	// No Drive sign-in.
	rec := e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/export", map[string]any{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("export without auth: %d, want 401", rec.Code)
	}

	// Signed in, but no enhanced image yet: Drive is never touched.
	if err := e.app.Sessions.With(id, func(st *workflow.SessionState) error {
		st.Token = &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	rec = e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/export", map[string]any{})
	if rec.Code != http.StatusConflict {
		t.Fatalf("export without enhanced image: %d, want 409", rec.Code)
	}
	if e.drive.folders != 0 || e.drive.uploads != 0 {
		t.Fatal("drive should not be called when preconditions fail")
	}
}

func TestExportHappyPath(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{"craft_type": "Pottery"})
	e.uploadImage(t, id)
	if rec := e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", map[string]any{"style": "Vibrant"}); rec.Code != http.StatusOK {
		t.Fatalf("enhance: %d", rec.Code)
	}
	if err := e.app.Sessions.With(id, func(st *workflow.SessionState) error {
		st.Token = &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	rec := e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/export", map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body)
	}
	body := decodeSession(t, rec)
	if body["status"] != export.StatusComplete {
		t.Errorf("status = %v", body["status"])
	}
	if e.drive.uploads != 3 {
		t.Errorf("uploads = %d, want 3", e.drive.uploads)
	}

	state := decodeSession(t, e.do(t, http.MethodGet, "/v1/sessions/"+id, nil, ""))
	if state["last_export_link"] != "https://drive.test/sub" {
		t.Errorf("last export link = %v", state["last_export_link"])
	}
}

func TestVoiceTranscribeConfirmDiscard(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	body, ct := multipartBody(t, "audio", "note.ogg", "audio/ogg", []byte("opus-ish bytes"))
	rec := e.do(t, http.MethodPost, "/v1/sessions/"+id+"/voice/transcribe", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("transcribe: %d %s", rec.Code, rec.Body)
	}
	staged := decodeSession(t, rec)
	if staged["text"] != "a hand painted clay lamp" {
		t.Errorf("staged text = %v", staged["text"])
	}
	if e.rec.calls != 1 {
		t.Fatalf("recognizer calls = %d", e.rec.calls)
	}

	rec = e.do(t, http.MethodPost, "/v1/sessions/"+id+"/voice/confirm", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", rec.Code, rec.Body)
	}
	draft := decodeSession(t, rec)["draft"].(map[string]any)
	if draft["description"] != "a hand painted clay lamp" {
		t.Errorf("description = %v", draft["description"])
	}

	// Confirming again with nothing staged conflicts.
	if rec := e.do(t, http.MethodPost, "/v1/sessions/"+id+"/voice/confirm", nil, ""); rec.Code != http.StatusConflict {
		t.Fatalf("confirm with empty stage: %d, want 409", rec.Code)
	}

	// Stage another note, then discard it.
	body, ct = multipartBody(t, "audio", "note.ogg", "audio/ogg", []byte("more bytes"))
	e.do(t, http.MethodPost, "/v1/sessions/"+id+"/voice/transcribe", body, ct)
	rec = e.do(t, http.MethodPost, "/v1/sessions/"+id+"/voice/discard", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("discard: %d", rec.Code)
	}
	state := decodeSession(t, rec)
	if state["staged_transcript"] != nil {
		t.Error("stage should be empty after discard")
	}
	if state["draft"].(map[string]any)["description"] != "a hand painted clay lamp" {
		t.Error("discard must not change the draft")
	}
}

func TestResetKeepsSignIn(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{"craft_type": "Pottery"})
	if err := e.app.Sessions.With(id, func(st *workflow.SessionState) error {
		st.Token = &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	rec := e.do(t, http.MethodPost, "/v1/sessions/"+id+"/reset", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: %d", rec.Code)
	}
	state := decodeSession(t, rec)
	if state["draft"].(map[string]any)["craft_type"] != "" {
		t.Error("draft should be cleared")
	}
	if state["authenticated"] != true {
		t.Error("reset must keep the Drive sign-in")
	}
}

func TestAuthURLCarriesSessionState(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	rec := e.do(t, http.MethodGet, "/v1/auth/google/url?session_id="+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("auth url: %d %s", rec.Code, rec.Body)
	}
	url := decodeSession(t, rec)["url"].(string)
	if !strings.Contains(url, "state="+id) {
		t.Errorf("auth url %q should carry the session id as state", url)
	}
	if !strings.Contains(url, "drive.file") {
		t.Errorf("auth url %q should request the drive.file scope", url)
	}

	if rec := e.do(t, http.MethodGet, "/v1/auth/google/url", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("auth url without session: %d, want 404", rec.Code)
	}
}

func TestMetricsDisabledWithoutDatabase(t *testing.T) {
	e := newEnv(t)
	if rec := e.do(t, http.MethodGet, "/v1/metrics/dashboard-24h", nil, ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("metrics without db: %d, want 503", rec.Code)
	}

	e.app.Usage = &fakeUsage{}
	rec := e.do(t, http.MethodGet, "/v1/metrics/dashboard-24h", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if decodeSession(t, rec)["day"] != "2026-08-30" {
		t.Errorf("summary = %s", rec.Body)
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	e.app.Capabilities = map[string]string{"speech": "ok"}
	rec := e.do(t, http.MethodGet, "/v1/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if decodeSession(t, rec)["status"] != "ok" {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestDownloadPack(t *testing.T) {
	e := newEnv(t)
	id := e.createSession(t)

	if rec := e.do(t, http.MethodGet, "/v1/sessions/"+id+"/pack", nil, ""); rec.Code != http.StatusConflict {
		t.Fatalf("empty pack: %d, want 409", rec.Code)
	}

	e.doJSON(t, http.MethodPut, "/v1/sessions/"+id+"/draft", map[string]any{"craft_type": "Pottery"})
	e.uploadImage(t, id)
	e.doJSON(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", map[string]any{"style": "Vibrant"})

	rec := e.do(t, http.MethodGet, "/v1/sessions/"+id+"/pack", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pack: %d %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("pack should not be empty")
	}
}
