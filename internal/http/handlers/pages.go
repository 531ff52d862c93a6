package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"localserv/internal/domain"
	"localserv/internal/middleware"
	"localserv/internal/policy"
	"localserv/internal/search"
)

// pageView is the envelope of every page endpoint.
type pageView struct {
	Actor  domain.ActorState `json:"actor"`
	Notice *notice           `json:"notice,omitempty"`
	Data   any               `json:"data"`
}

func (a *App) page(w http.ResponseWriter, r *http.Request, data any) {
	if data == nil {
		data = struct{}{}
	}
	a.json(w, http.StatusOK, pageView{Actor: a.actor(r), Notice: a.takeNotice(r), Data: data})
}

type homeView struct {
	Listings      []domain.Listing `json:"listings"`
	City          string           `json:"city,omitempty"`
	Query         string           `json:"q,omitempty"`
	SuggestedCity string           `json:"suggested_city,omitempty"`
}

// HomePage is the public explore view.
func (a *App) HomePage(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	items, err := a.Listings.ListPublic(r.Context(), domain.PublicFilter{City: city})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	view := homeView{Listings: orEmpty(search.Listings(items, query)), City: city, Query: query}
	if city == "" {
		view.SuggestedCity = a.suggestCity(r)
	}
	a.page(w, r, view)
}

func (a *App) suggestCity(r *http.Request) string {
	if a.Geo == nil {
		return ""
	}
	city, err := a.Geo.City(middleware.ClientIP(r))
	if err != nil {
		a.Logger.Debug().Err(err).Msg("city lookup failed")
		return ""
	}
	return search.TitleCity(city)
}

func (a *App) AuthPage(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, nil)
}

type listingView struct {
	Listing    domain.Listing     `json:"listing"`
	CanManage  bool               `json:"can_manage"`
	Highlights []domain.Highlight `json:"highlights,omitempty"`
}

// ServicePage shows one listing. Inactive listings are visible to their owner and
// to admins only.
func (a *App) ServicePage(w http.ResponseWriter, r *http.Request) {
	l, err := a.Listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		a.listingNotFound(w, r)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	canManage := policy.CanManageListing(a.actor(r), *l)
	if !l.Active && !canManage {
		a.listingNotFound(w, r)
		return
	}
	view := listingView{Listing: *l, CanManage: canManage}
	if canManage {
		hl, err := a.Subscriptions.ActiveHighlights(r.Context(), l.ID)
		if err != nil {
			a.Logger.Warn().Err(err).Str("listing", l.ID).Msg("load highlights failed")
		}
		view.Highlights = hl
	}
	a.page(w, r, view)
}

func (a *App) listingNotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusNotFound, "not_found", middleware.Message(middleware.LocaleFromContext(r.Context()), "listing_not_found"))
}

type plansView struct {
	Plans   []domain.Plan            `json:"plans"`
	Current *domain.SubscriptionView `json:"current,omitempty"`
	Perks   perks                    `json:"perks"`
}

type perks struct {
	PremiumBadge     bool `json:"premium_badge"`
	PriorityInSearch bool `json:"priority_search"`
}

func perksOf(sub *domain.SubscriptionView, now time.Time) perks {
	return perks{PremiumBadge: policy.BadgeEligible(sub, now), PriorityInSearch: policy.PriorityEligible(sub, now)}
}

func (a *App) PlansPage(w http.ResponseWriter, r *http.Request) {
	actor := a.actor(r)
	var view plansView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		plans, err := a.Subscriptions.ListPlans(ctx)
		view.Plans = plans
		return err
	})
	if actor.Authenticated() {
		g.Go(func() error {
			sub, err := a.Subscriptions.GetActiveSubscription(ctx, actor.IdentityID)
			now := a.now()
			if sub.InEffect(now) {
				view.Current = sub
			}
			view.Perks = perksOf(sub, now)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}
	view.Plans = orEmpty(view.Plans)
	a.page(w, r, view)
}

type createView struct {
	Quota policy.QuotaDecision `json:"quota"`
}

// CreatePage reports whether the actor may publish another listing.
func (a *App) CreatePage(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, createView{Quota: a.Quota.CheckListingQuota(r.Context(), a.actor(r))})
}

type dashboardView struct {
	Listings []domain.Listing     `json:"listings"`
	Active   int                  `json:"active"`
	Quota    policy.QuotaDecision `json:"quota"`
	Perks    perks                `json:"perks"`
}

// DashboardPage lists the actor's own listings with the quota summary.
func (a *App) DashboardPage(w http.ResponseWriter, r *http.Request) {
	actor := a.actor(r)
	var (
		items []domain.Listing
		sub   *domain.SubscriptionView
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		items, err = a.Listings.ListByOwner(ctx, actor.IdentityID)
		return err
	})
	g.Go(func() (err error) {
		sub, err = a.Subscriptions.GetActiveSubscription(ctx, actor.IdentityID)
		return err
	})
	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}
	view := dashboardView{
		Listings: orEmpty(items),
		Quota:    a.Quota.CheckListingQuota(r.Context(), actor),
		Perks:    perksOf(sub, a.now()),
	}
	for _, l := range items {
		if l.Active {
			view.Active++
		}
	}
	a.page(w, r, view)
}

func (a *App) ProfilePage(w http.ResponseWriter, r *http.Request) {
	p, err := a.Profiles.GetProfile(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.page(w, r, map[string]any{"profile": p})
}

func (a *App) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, nil)
}

// NotFound sends unmatched paths home.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.Redirect(w, policy.HomePath)
}
