package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"localserv/internal/domain"
	"localserv/internal/search"
)

type adminStats struct {
	TotalUsers     int `json:"total_users"`
	TotalListings  int `json:"total_services"`
	ActiveListings int `json:"active_services"`
}

func (a *App) AdminDashboardPage(w http.ResponseWriter, r *http.Request) {
	var stats adminStats
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats.TotalUsers, err = a.Profiles.CountProfiles(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalListings, err = a.Listings.Count(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveListings, err = a.Listings.Count(ctx, true)
		return err
	})
	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}
	a.page(w, r, map[string]any{"stats": stats})
}

func (a *App) AdminServicesPage(w http.ResponseWriter, r *http.Request) {
	items, err := a.Listings.ListAll(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	a.page(w, r, map[string]any{"services": orEmpty(search.AdminListings(items, q))})
}

func (a *App) AdminUsersPage(w http.ResponseWriter, r *http.Request) {
	users, err := a.Profiles.ListProfiles(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	a.page(w, r, map[string]any{"users": orEmpty(search.Profiles(users, q))})
}

// AdminReportsPage has no data source yet.
func (a *App) AdminReportsPage(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, map[string]any{"reports": []any{}})
}

type monetizationView struct {
	Users         []domain.Profile          `json:"users"`
	Services      []domain.Listing          `json:"services"`
	Plans         []domain.Plan             `json:"plans"`
	Subscriptions []domain.SubscriptionView `json:"subscriptions"`
}

func (a *App) AdminMonetizationPage(w http.ResponseWriter, r *http.Request) {
	var view monetizationView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		view.Users, err = a.Profiles.ListProfiles(ctx)
		return err
	})
	g.Go(func() (err error) {
		view.Services, err = a.Listings.ListAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		view.Plans, err = a.Subscriptions.ListPlans(ctx)
		return err
	})
	g.Go(func() (err error) {
		view.Subscriptions, err = a.Subscriptions.ListSubscriptions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}
	view.Users = orEmpty(view.Users)
	view.Services = orEmpty(view.Services)
	view.Plans = orEmpty(view.Plans)
	view.Subscriptions = orEmpty(view.Subscriptions)
	a.page(w, r, view)
}

func (a *App) AdminSetListingVerified(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Verified == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "verified is required")
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.Listings.SetVerified(r.Context(), id, *req.Verified); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "is_verified": *req.Verified})
}

func (a *App) AdminSetUserBlocked(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Blocked == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "blocked is required")
		return
	}
	id := chi.URLParam(r, "id")
	if *req.Blocked && id == a.currentUserID(r) {
		a.error(w, http.StatusBadRequest, "validation", "admins cannot block themselves")
		return
	}
	if err := a.Profiles.SetBlocked(r.Context(), id, *req.Blocked); err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("user", id).Bool("blocked", *req.Blocked).Str("by", a.currentUserID(r)).Msg("user block changed")
	a.json(w, http.StatusOK, map[string]any{"id": id, "blocked": *req.Blocked})
}

type activateSubscriptionRequest struct {
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
	Days   int    `json:"days"`
}

// AdminActivateSubscription replaces the user's active subscription.
func (a *App) AdminActivateSubscription(w http.ResponseWriter, r *http.Request) {
	var req activateSubscriptionRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.PlanID) == "" {
		a.error(w, http.StatusBadRequest, "validation", "user_id and plan_id are required")
		return
	}
	sub, err := a.Subscriptions.ActivateSubscription(r.Context(), req.UserID, req.PlanID, req.Days)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("user", req.UserID).Str("plan", req.PlanID).Time("expires_at", sub.ExpiresAt).Msg("subscription activated")
	a.json(w, http.StatusCreated, sub)
}

type activateHighlightRequest struct {
	ListingID string `json:"service_id"`
	Days      int    `json:"days"`
}

func (a *App) AdminActivateHighlight(w http.ResponseWriter, r *http.Request) {
	var req activateHighlightRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		a.error(w, http.StatusBadRequest, "validation", "service_id is required")
		return
	}
	hl, err := a.Subscriptions.ActivateHighlight(r.Context(), req.ListingID, req.Days)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("listing", req.ListingID).Time("ends_at", hl.EndsAt).Msg("highlight activated")
	a.json(w, http.StatusCreated, hl)
}
