package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"localserv/internal/domain"
	"localserv/internal/policy"
	"localserv/internal/session"
)

// ClientCookieName names the cookie that identifies a browser.
const ClientCookieName = "sid"

const clientCookieMaxAge = 365 * 24 * 60 * 60

type sessionKey string

const (
	clientIDKey  sessionKey = "client_id"
	newClientKey sessionKey = "new_client"
	actorKey     sessionKey = "actor"
	resolverKey  sessionKey = "resolver"
	sourceKey    sessionKey = "resolver_source"
)

// ClientSession makes sure every request carries a client id, issuing the cookie
// when it is missing or malformed.
func ClientSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, issued := "", false
			if c, err := r.Cookie(ClientCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					clientID = c.Value
				}
			}
			if clientID == "" {
				clientID, issued = uuid.NewString(), true
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookieName,
					Value:    clientID,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := ContextWithClientID(r.Context(), clientID)
			if issued {
				ctx = context.WithValue(ctx, newClientKey, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolverSource hands out the session resolver of a client.
type ResolverSource interface {
	Get(clientID string) (*session.Resolver, error)
}

// Actor waits, at most wait, for the client's session to settle and stores the
// resulting actor in the request context. A client whose cookie was issued by this
// very request has no identity session yet: it is anonymous and gets no resolver
// until it comes back with the cookie or calls SessionResolver.
func Actor(source ResolverSource, wait time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientIDFromContext(r.Context())
			base := context.WithValue(r.Context(), sourceKey, source)
			if IsNewClient(r.Context()) {
				next.ServeHTTP(w, r.WithContext(ContextWithActor(base, domain.AnonymousActor(true))))
				return
			}
			r = r.WithContext(base)
			res, err := source.Get(clientID)
			if err != nil {
				logger.Warn().Err(err).Str("client", clientID).Msg("session resolver unavailable")
				next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), domain.AnonymousActor(true))))
				return
			}
			actor := WaitActor(r.Context(), res, wait)
			ctx := context.WithValue(ContextWithActor(r.Context(), actor), resolverKey, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WaitActor waits for res to settle and returns its actor. A closed resolver is
// anonymous.
func WaitActor(ctx context.Context, res *session.Resolver, wait time.Duration) domain.ActorState {
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}
	actor, err := res.Wait(ctx)
	if errors.Is(err, session.ErrClosed) {
		return domain.AnonymousActor(true)
	}
	return actor
}

// Guard applies a page requirement. Denied requests get 303 See Other with the
// redirect target in Location and in the body.
func Guard(req policy.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := policy.GuardRoute(ActorFromContext(r.Context()), req)
			if !d.Allowed {
				Redirect(w, d.RedirectTo)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Redirect answers 303 towards target.
func Redirect(w http.ResponseWriter, target string) {
	w.Header().Set("Location", target)
	writeJSON(w, http.StatusSeeOther, map[string]string{"redirect": target})
}

// RequireAPI applies a requirement to a JSON endpoint: 401 for anonymous callers,
// 403 for members without the admin role.
func RequireAPI(req policy.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			d := policy.GuardRoute(actor, req)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			status, code := http.StatusUnauthorized, "unauthorized"
			if actor.Authenticated() {
				status, code = http.StatusForbidden, "forbidden"
			}
			writeJSON(w, status, map[string]any{"error": errorBody{Code: code, Message: code, Redirect: d.RedirectTo}})
		})
	}
}

func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithActor(ctx context.Context, actor domain.ActorState) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the request's actor, anonymous when none was resolved.
func ActorFromContext(ctx context.Context) domain.ActorState {
	if v, ok := ctx.Value(actorKey).(domain.ActorState); ok {
		return v
	}
	return domain.AnonymousActor(true)
}

// IsNewClient reports whether the client cookie was issued by this request.
func IsNewClient(ctx context.Context) bool {
	v, _ := ctx.Value(newClientKey).(bool)
	return v
}

// SessionResolver returns the client's resolver, creating it when Actor skipped it
// for a new client. Auth endpoints use it right after the provider emitted an event.
func SessionResolver(ctx context.Context) *session.Resolver {
	if res := ResolverFromContext(ctx); res != nil {
		return res
	}
	source, ok := ctx.Value(sourceKey).(ResolverSource)
	clientID := ClientIDFromContext(ctx)
	if !ok || clientID == "" {
		return nil
	}
	res, err := source.Get(clientID)
	if err != nil {
		return nil
	}
	return res
}

// ResolverFromContext returns the client's resolver, or nil outside Actor.
func ResolverFromContext(ctx context.Context) *session.Resolver {
	if v, ok := ctx.Value(resolverKey).(*session.Resolver); ok {
		return v
	}
	return nil
}
