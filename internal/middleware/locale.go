package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type voiceLocaleContextKey struct{}
type countryContextKey struct{}

var (
	VoiceLocaleKey = voiceLocaleContextKey{}
	CountryKey     = countryContextKey{}
)

// DefaultVoiceLocale is used when nothing about the request hints at a
// language.
const DefaultVoiceLocale = "en-US"

// voiceLocales maps a base language to the recognition locale used for
// voice notes. Artisans in India overwhelmingly record in regional
// languages, so those map onto their Indian variants.
var voiceLocales = map[string]string{
	"en": "en-US",
	"hi": "hi-IN",
	"gu": "gu-IN",
	"bn": "bn-IN",
	"ta": "ta-IN",
	"te": "te-IN",
	"mr": "mr-IN",
	"kn": "kn-IN",
}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// VoiceLocale stores the best-guess speech recognition locale in the request
// context. Order of precedence: explicit X-Locale header, Accept-Language,
// then GeoIP country (India defaults to Hindi).
func VoiceLocale(lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := resolveCountry(r, lookup)
			locale := detectVoiceLocale(r, country)
			ctx := context.WithValue(r.Context(), VoiceLocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, strings.ToUpper(country))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectVoiceLocale(r *http.Request, country string) string {
	if v := NormalizeVoiceLocale(r.Header.Get("X-Locale")); v != "" {
		return v
	}
	if v := voiceLocaleFromAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	if strings.EqualFold(country, "IN") {
		return "hi-IN"
	}
	return DefaultVoiceLocale
}

// NormalizeVoiceLocale maps a locale tag onto a supported recognition
// locale, or "" when the tag is empty or unparseable.
func NormalizeVoiceLocale(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, _ := parsed.Base()
	if locale, ok := voiceLocales[base.String()]; ok {
		return locale
	}
	return DefaultVoiceLocale
}

func voiceLocaleFromAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, _ := tags[0].Base()
	if locale, ok := voiceLocales[base.String()]; ok {
		return locale
	}
	return DefaultVoiceLocale
}

// VoiceLocaleFromContext returns the locale stored by the middleware.
func VoiceLocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(VoiceLocaleKey).(string); ok && v != "" {
		return v
	}
	return DefaultVoiceLocale
}

// CountryFromContext returns the ISO country code stored in the request
// context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

func resolveCountry(r *http.Request, lookup CountryLookup) string {
	headerHints := []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

func localeRegion(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		if token == "" {
			continue
		}
		if idx := strings.IndexAny(token, "-_"); idx > 0 && idx < len(token)-1 {
			return strings.ToUpper(token[idx+1:])
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
