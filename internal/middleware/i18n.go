package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

const (
	LocalePT = "pt"
	LocaleEN = "en"
)

// lusophone countries default to Portuguese
var portugueseCountries = map[string]struct{}{
	"BR": {}, "PT": {}, "AO": {}, "MZ": {}, "CV": {},
}

func I18N(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r)
			locale := detectLocale(r, defaultLocale, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string, country string) string {
	if v := r.Header.Get("X-Locale"); v != "" {
		return normalizeLocale(v)
	}
	if v := parseAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	if _, ok := portugueseCountries[strings.ToUpper(country)]; ok {
		return LocalePT
	}
	if country != "" {
		return LocaleEN
	}
	if fallback != "" {
		return normalizeLocale(fallback)
	}
	return LocalePT
}

func parseAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		locale := strings.TrimSpace(strings.Split(part, ";")[0])
		if locale == "" || locale == "*" {
			continue
		}
		return normalizeLocale(locale)
	}
	return ""
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(locale, "pt") {
		return LocalePT
	}
	return LocaleEN
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

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return LocalePT
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry reads the country hint set by the edge proxy, if any.
func ResolveCountry(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	return ""
}

var messages = map[string]map[string]string{
	LocalePT: {
		"account_suspended":   "Sua conta foi suspensa.",
		"quota_reached":       "Você atingiu o limite de %d anúncios do seu plano. Faça um upgrade para anunciar mais.",
		"quota_unavailable":   "Não foi possível verificar seu limite de anúncios. Tente novamente.",
		"invalid_credentials": "E-mail ou senha inválidos.",
		"email_taken":         "Este e-mail já está cadastrado.",
		"not_owner":           "Você só pode alterar os seus próprios anúncios.",
		"listing_not_found":   "Anúncio não encontrado.",
	},
	LocaleEN: {
		"account_suspended":   "Your account has been suspended.",
		"quota_reached":       "You reached your plan's limit of %d listings. Upgrade to publish more.",
		"quota_unavailable":   "We could not check your listing limit. Please try again.",
		"invalid_credentials": "Invalid email or password.",
		"email_taken":         "This email is already registered.",
		"not_owner":           "You can only change your own listings.",
		"listing_not_found":   "Listing not found.",
	},
}

// Message renders the user-facing text of key in locale. Unknown keys are returned
// as is.
func Message(locale, key string, args ...any) string {
	catalog, ok := messages[locale]
	if !ok {
		catalog = messages[LocalePT]
	}
	text, ok := catalog[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}
