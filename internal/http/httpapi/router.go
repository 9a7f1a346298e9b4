package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kalakarigar/internal/http/handlers"
	"kalakarigar/internal/middleware"
)

// Options carries everything the router needs beyond the handler set.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	StaticDir       string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Log),
		middleware.CORS(opts.AllowedOrigins),
		middleware.VoiceLocale(opts.CountryLookup),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/metrics/dashboard-24h", app.Dashboard24h)

	r.Route("/v1/auth/google", func(r chi.Router) {
		r.Get("/url", app.GoogleAuthURL)
		r.Get("/callback", app.GoogleAuthCallback)
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Put("/draft", app.UpdateDraft)
			r.Post("/advance", app.Advance)
			r.Post("/navigate", app.Navigate)
			r.Post("/reset", app.Reset)

			r.Post("/voice/transcribe", app.Transcribe)
			r.Post("/voice/confirm", app.ConfirmTranscript)
			r.Post("/voice/discard", app.DiscardTranscript)

			r.Post("/image", app.UploadImage)
			r.Get("/image/enhanced", app.DownloadEnhanced)
			r.Post("/enhance", app.EnhanceImage)

			r.Post("/content", app.GenerateContent)

			r.Post("/export", app.Export)
			r.Get("/pack", app.DownloadPack)
		})
	})

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
