package handlers

import (
	"net/http"

	"localserv/internal/domain"
	"localserv/internal/identity"
	"localserv/internal/middleware"
	"localserv/internal/session"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	City     string `json:"city"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Actor  domain.ActorState `json:"actor"`
	Notice *notice           `json:"notice,omitempty"`
}

func (a *App) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !a.decode(w, r, &req) {
		return
	}
	clientID := middleware.ClientIDFromContext(r.Context())
	meta := identity.Metadata{Name: req.Name, City: req.City}
	if _, err := a.Auth.SignUp(r.Context(), clientID, req.Email, req.Password, meta); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSettled(w, r, http.StatusCreated)
}

func (a *App) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !a.decode(w, r, &req) {
		return
	}
	clientID := middleware.ClientIDFromContext(r.Context())
	if _, err := a.Auth.SignInWithPassword(r.Context(), clientID, req.Email, req.Password); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSettled(w, r, http.StatusOK)
}

func (a *App) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := a.Auth.SignOut(r.Context(), middleware.ClientIDFromContext(r.Context())); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSettled(w, r, http.StatusOK)
}

func (a *App) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Auth.Refresh(r.Context(), middleware.ClientIDFromContext(r.Context())); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSettled(w, r, http.StatusOK)
}

// Session reports the client's current actor and pending notice.
func (a *App) Session(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, sessionResponse{Actor: a.actor(r), Notice: a.takeNotice(r)})
}

// respondSettled waits for the resolver to apply the event the provider just emitted
// and answers with the resulting actor. A sign-in that ends in suspension is a 403.
// The resolver of a first-time client is created here, after the provider already
// holds its session.
func (a *App) respondSettled(w http.ResponseWriter, r *http.Request, status int) {
	actor := a.actor(r)
	res := middleware.SessionResolver(r.Context())
	if res != nil {
		actor = middleware.WaitActor(r.Context(), res, a.SessionWait)
	}
	n := a.takeNoticeFrom(res, r)
	if n != nil && n.Code == session.NoticeAccountSuspended {
		a.json(w, http.StatusForbidden, map[string]any{
			"error": errorBody{Code: "account_blocked", Message: n.Message},
			"actor": actor,
		})
		return
	}
	a.json(w, status, sessionResponse{Actor: actor, Notice: n})
}
