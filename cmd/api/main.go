package main

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"kalakarigar/internal/adapter/repo"
	"kalakarigar/internal/export"
	"kalakarigar/internal/http/handlers"
	"kalakarigar/internal/http/httpapi"
	"kalakarigar/internal/infra"
	"kalakarigar/internal/infra/geoip"
	"kalakarigar/internal/infra/google"
	"kalakarigar/internal/middleware"
	"kalakarigar/internal/providers/content"
	"kalakarigar/internal/providers/enhance"
	"kalakarigar/internal/providers/genai"
	"kalakarigar/internal/providers/vision"
	"kalakarigar/internal/providers/voice"
	"kalakarigar/internal/storage"
	"kalakarigar/internal/workflow"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	gemini, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		TextModel:  cfg.GeminiModel,
		ImageModel: cfg.GeminiImageModel,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini client construction failed")
	}

	services := google.NewServices(ctx, cfg, logger)
	defer services.Close()

	capabilities := services.Health()

	app := &handlers.App{
		Cfg:      cfg,
		Log:      logger,
		Sessions: workflow.NewStore(cfg.SessionTTL),
		Content: content.NewGenerator(content.Options{
			Model:   gemini,
			MemoTTL: cfg.MemoTTL,
		}),
		Enhancer: enhance.NewEnhancer(enhance.Options{
			Model:   gemini,
			MemoTTL: cfg.MemoTTL,
		}),
		Capabilities: capabilities,
	}

	if services.Speech != nil {
		app.Transcriber = voice.NewTranscriber(voice.TranscriberOptions{
			Recognizer:    &voice.APIRecognizer{Service: services.Speech},
			MaxBytes:      cfg.MaxAudioBytes,
			MinConfidence: cfg.TranscriptMinConf,
		})
	}
	if services.Translate != nil {
		app.Translator = voice.NewTranslator(&voice.GoogleEngine{Service: services.Translate})
	}
	if services.Vision != nil {
		// The suggester offers a wider list than the handler preselects,
		// so the artisan always has extra labels to pick from.
		app.Tags = vision.NewSuggester(vision.SuggesterOptions{
			Annotator:  &vision.APIAnnotator{Service: services.Vision},
			MaxResults: cfg.TagSuggestLimit * 2,
			MinScore:   cfg.TagMinScore,
			Logger:     logger,
		})
	}

	// Blob storage: Cloud Storage when configured, local filesystem served
	// under /static otherwise.
	var staticDir string
	if services.Storage != nil {
		store, serr := storage.NewGCSStore(services.Storage, cfg.StorageBucket, cfg.StorageBaseURL)
		if serr != nil {
			logger.Error().Err(serr).Msg("cloud storage store construction failed")
		} else {
			app.Uploader = storage.NewUploader(store, "products")
		}
	}
	if app.Uploader == nil {
		store, serr := storage.NewFileStore(cfg.StorageBasePath, cfg.StorageBaseURL)
		if serr != nil {
			logger.Error().Err(serr).Msg("filesystem store construction failed")
		} else {
			app.Uploader = storage.NewUploader(store, "products")
			staticDir = cfg.StorageBasePath
		}
	}

	if services.Firestore != nil {
		app.Artisans = repo.NewArtisanRepository(services.Firestore)
	}

	if cfg.DatabaseURL != "" {
		pool, derr := infra.NewDBPool(ctx, cfg)
		if derr != nil {
			logger.Error().Err(derr).Msg("usage database connection failed, metrics disabled")
		} else {
			defer pool.Close()
			app.Usage = repo.NewUsageRepository(pool)
		}
	}

	if cfg.OAuthClientID != "" && cfg.OAuthClientSecret != "" && cfg.OAuthRedirectURL != "" {
		auth, aerr := export.NewAuthenticator(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURL)
		if aerr != nil {
			logger.Error().Err(aerr).Msg("drive oauth setup failed, export disabled")
		} else {
			app.Auth = auth
			app.NewDrive = func(ctx context.Context, ts oauth2.TokenSource) (export.DriveAPI, error) {
				svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
				if err != nil {
					return nil, err
				}
				return &export.GoogleDrive{Service: svc}, nil
			}
		}
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale falls back to headers")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   countryLookup,
		StaticDir:       staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr()).Msg("API listening")
	if err := server.Run(runCtx); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
