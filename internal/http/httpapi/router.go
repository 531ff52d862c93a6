package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"localserv/internal/http/handlers"
	"localserv/internal/middleware"
	"localserv/internal/policy"
)

type Options struct {
	Logger             zerolog.Logger
	Sessions           middleware.ResolverSource
	SessionWait        time.Duration
	CORSAllowedOrigins []string
	RateLimitPerMin    int
	DefaultLocale      string
	SecureCookies      bool
	// StaticDir is served under /static when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.EchoRequestID,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSAllowedOrigins),
	)

	r.Get("/healthz", app.Health)
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.I18N(opts.DefaultLocale),
			middleware.ClientSession(opts.SecureCookies),
			middleware.Actor(opts.Sessions, opts.SessionWait, opts.Logger),
		)

		pages := pageHandlers(app)
		for _, rt := range policy.Routes {
			h, ok := pages[rt.Pattern]
			if !ok {
				panic(fmt.Sprintf("httpapi: no handler for page %s", rt.Pattern))
			}
			r.With(middleware.Guard(rt.Requirement)).Get(rt.Pattern, h)
		}

		r.Route("/api", func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			}
			r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"not found"}}`))
			})

			r.Get("/session", app.Session)
			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", app.SignUp)
				r.Post("/signin", app.SignIn)
				r.Post("/signout", app.SignOut)
				r.Post("/refresh", app.Refresh)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAPI(policy.RequiresAuth()))
				r.Route("/listings", func(r chi.Router) {
					r.Post("/", app.CreateListing)
					r.Put("/{id}", app.UpdateListing)
					r.Patch("/{id}/active", app.SetListingActive)
					r.Delete("/{id}", app.DeleteListing)
				})
				r.Post("/enhance", app.EnhanceText)
				r.Post("/uploads/{bucket}", app.Upload)
				r.Patch("/profile", app.UpdateProfile)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAPI(policy.RequiresAdmin()))
				r.Patch("/listings/{id}/verified", app.AdminSetListingVerified)
				r.Patch("/users/{id}/blocked", app.AdminSetUserBlocked)
				r.Post("/subscriptions", app.AdminActivateSubscription)
				r.Post("/highlights", app.AdminActivateHighlight)
			})
		})
	})

	r.NotFound(app.NotFound)

	return r
}

func pageHandlers(app *handlers.App) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/":                   app.HomePage,
		"/auth":               app.AuthPage,
		"/service/{id}":       app.ServicePage,
		"/plans":              app.PlansPage,
		"/create":             app.CreatePage,
		"/dashboard":          app.DashboardPage,
		"/profile":            app.ProfilePage,
		"/admin/login":        app.AdminLoginPage,
		"/admin":              app.AdminDashboardPage,
		"/admin/services":     app.AdminServicesPage,
		"/admin/users":        app.AdminUsersPage,
		"/admin/reports":      app.AdminReportsPage,
		"/admin/monetization": app.AdminMonetizationPage,
	}
}
