package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"localserv/internal/domain"
	"localserv/internal/identity"
	"localserv/internal/infra/geoip"
	"localserv/internal/middleware"
	"localserv/internal/policy"
	"localserv/internal/providers/textenhance"
	"localserv/internal/session"
	"localserv/internal/storage"
)

const maxJSONBody = 1 << 20

// AuthService is the identity provider as used by the auth endpoints.
type AuthService interface {
	SignUp(ctx context.Context, clientID, email, password string, meta identity.Metadata) (*identity.Session, error)
	SignInWithPassword(ctx context.Context, clientID, email, password string) (*identity.Session, error)
	SignOut(ctx context.Context, clientID string) error
	Refresh(ctx context.Context, clientID string) (*identity.Session, error)
}

// QuotaEvaluator decides whether the actor may publish another listing.
type QuotaEvaluator interface {
	CheckListingQuota(ctx context.Context, actor domain.ActorState) policy.QuotaDecision
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Logger        zerolog.Logger
	DB            Pinger
	Auth          AuthService
	Profiles      domain.ProfileStore
	Listings      domain.ListingStore
	Subscriptions domain.SubscriptionStore
	Quota         QuotaEvaluator
	Enhancer      textenhance.Enhancer
	Uploads       *storage.Uploader
	// Geo is optional; leave it nil when no database is configured.
	Geo         geoip.CityResolver
	SessionWait time.Duration
	Now         func() time.Time

	// serializes quota check + insert per owner
	createLocks sync.Map
}

type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": errorBody{Code: code, Message: message}})
}

// fail maps domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "invalid_credentials", middleware.Message(locale, "invalid_credentials"))
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrAccountBlocked):
		a.error(w, http.StatusForbidden, "account_blocked", middleware.Message(locale, "account_suspended"))
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrEmailTaken):
		a.error(w, http.StatusConflict, "email_taken", middleware.Message(locale, "email_taken"))
	default:
		a.Logger.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) actor(r *http.Request) domain.ActorState {
	return middleware.ActorFromContext(r.Context())
}

func (a *App) currentUserID(r *http.Request) string {
	return a.actor(r).IdentityID
}

// takeNotice consumes the client's pending one-time notice, if any.
func (a *App) takeNotice(r *http.Request) *notice {
	return a.takeNoticeFrom(middleware.ResolverFromContext(r.Context()), r)
}

func (a *App) takeNoticeFrom(res *session.Resolver, r *http.Request) *notice {
	if res == nil {
		return nil
	}
	code := res.TakeNotice()
	if code == "" {
		return nil
	}
	return &notice{Code: code, Message: middleware.Message(middleware.LocaleFromContext(r.Context()), code)}
}

func (a *App) ownerLock(ownerID string) *sync.Mutex {
	mu, _ := a.createLocks.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
