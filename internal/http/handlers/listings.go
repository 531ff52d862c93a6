package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"localserv/internal/domain"
	"localserv/internal/middleware"
	"localserv/internal/policy"
)

type toggleRequest struct {
	Active   *bool `json:"active"`
	Verified *bool `json:"verified"`
	Blocked  *bool `json:"blocked"`
}

// CreateListing publishes a listing if the actor's plan still has room for it.
func (a *App) CreateListing(w http.ResponseWriter, r *http.Request) {
	var in domain.ListingInput
	if !a.decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}

	actor := a.actor(r)
	mu := a.ownerLock(actor.IdentityID)
	mu.Lock()
	defer mu.Unlock()

	decision := a.Quota.CheckListingQuota(r.Context(), actor)
	if !decision.Allowed {
		a.quotaDenied(w, r, decision)
		return
	}
	l, err := a.Listings.Create(r.Context(), actor.IdentityID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("listing", l.ID).Str("owner", actor.IdentityID).Msg("listing created")
	a.json(w, http.StatusCreated, l)
}

func (a *App) quotaDenied(w http.ResponseWriter, r *http.Request, d policy.QuotaDecision) {
	locale := middleware.LocaleFromContext(r.Context())
	switch d.Reason {
	case policy.ReasonUnauthenticated:
		a.error(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case policy.ReasonUnavailable:
		a.error(w, http.StatusServiceUnavailable, "quota_unavailable", middleware.Message(locale, "quota_unavailable"))
	default:
		a.json(w, http.StatusForbidden, map[string]any{
			"error": errorBody{
				Code:     "quota_exceeded",
				Message:  middleware.Message(locale, "quota_reached", d.Limit),
				Redirect: d.RedirectTo,
			},
			"quota": d,
		})
	}
}

// managedListing loads the listing named by the {id} URL parameter and checks that
// the actor may change it. It writes the error response itself.
func (a *App) managedListing(w http.ResponseWriter, r *http.Request) (*domain.Listing, bool) {
	l, err := a.Listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		a.listingNotFound(w, r)
		return nil, false
	}
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	if !policy.CanManageListing(a.actor(r), *l) {
		a.error(w, http.StatusForbidden, "forbidden", middleware.Message(middleware.LocaleFromContext(r.Context()), "not_owner"))
		return nil, false
	}
	return l, true
}

func (a *App) UpdateListing(w http.ResponseWriter, r *http.Request) {
	l, ok := a.managedListing(w, r)
	if !ok {
		return
	}
	var in domain.ListingInput
	if !a.decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}
	updated, err := a.Listings.Update(r.Context(), l.ID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, updated)
}

func (a *App) SetListingActive(w http.ResponseWriter, r *http.Request) {
	l, ok := a.managedListing(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Active == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "active is required")
		return
	}
	if err := a.Listings.SetActive(r.Context(), l.ID, *req.Active); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": l.ID, "active": *req.Active})
}

func (a *App) DeleteListing(w http.ResponseWriter, r *http.Request) {
	l, ok := a.managedListing(w, r)
	if !ok {
		return
	}
	if err := a.Listings.Delete(r.Context(), l.ID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("listing", l.ID).Str("by", a.currentUserID(r)).Msg("listing deleted")
	w.WriteHeader(http.StatusNoContent)
}
