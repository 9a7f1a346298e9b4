package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Generative model. The API key is the only startup-blocking credential:
	// without it neither content generation nor image enhancement can even
	// fall back in a way the product finds acceptable to ship.
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	GeminiBaseURL    string

	// Service-account JSON for Speech-to-Text, Translation, and Vision.
	// Optional; absence disables voice and tag suggestions.
	GCPCredentialsJSON string

	// Firestore / Cloud Storage. Optional; absence switches persistence to
	// the filesystem store and disables the artisan record write.
	GCPProjectID    string
	StorageBucket   string
	StorageBasePath string
	StorageBaseURL  string

	// Google Drive export OAuth client. Optional; absence disables export.
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string

	// Usage counters. Optional; absence disables the dashboard endpoint.
	DatabaseURL string

	GeoIPDBPath string

	MaxAudioBytes     int64
	MaxImageBytes     int64
	TagSuggestLimit   int
	TagMinScore       float64
	MemoTTL           time.Duration
	SessionTTL        time.Duration
	TranscriptMinConf float64

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. A missing Gemini API key is a hard error; every
// other credential degrades only its own capability.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:   getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GCPCredentialsJSON: os.Getenv("GCP_CREDENTIALS_JSON"),
		GCPProjectID:       os.Getenv("GCP_PROJECT_ID"),
		StorageBucket:      os.Getenv("STORAGE_BUCKET"),
		StorageBasePath:    getEnv("STORAGE_BASE_PATH", "data/uploads"),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		OAuthClientID:      os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
		OAuthClientSecret:  os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		OAuthRedirectURL:   os.Getenv("GOOGLE_OAUTH_REDIRECT_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		MaxAudioBytes:      getEnvInt64("MAX_AUDIO_BYTES", 10<<20),
		MaxImageBytes:      getEnvInt64("MAX_IMAGE_BYTES", 15<<20),
		TagSuggestLimit:    getEnvInt("TAG_SUGGEST_LIMIT", 5),
		TagMinScore:        getEnvFloat("TAG_MIN_SCORE", 0.6),
		MemoTTL:            time.Second * time.Duration(getEnvInt("MEMO_TTL_SECONDS", 300)),
		SessionTTL:         time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)),
		TranscriptMinConf:  getEnvFloat("TRANSCRIPT_MIN_CONFIDENCE", 0.6),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
