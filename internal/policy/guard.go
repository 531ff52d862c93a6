package policy

import "localserv/internal/domain"

const (
	HomePath       = "/"
	AuthPath       = "/auth"
	AdminLoginPath = "/admin/login"
	AdminHomePath  = "/admin"
	PlansPath      = "/plans"
)

// Kind is the access rule attached to a route.
type Kind int

const (
	KindPublic Kind = iota
	KindRequiresAuth
	KindRequiresAdmin
	KindRedirectIfAuthed
)

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindRequiresAuth:
		return "requires_auth"
	case KindRequiresAdmin:
		return "requires_admin"
	case KindRedirectIfAuthed:
		return "redirect_if_authed"
	default:
		return "unknown"
	}
}

// Requirement is a route's access rule. Target and AdminOnly apply to
// KindRedirectIfAuthed only.
type Requirement struct {
	Kind      Kind
	Target    string
	AdminOnly bool
}

func Public() Requirement        { return Requirement{Kind: KindPublic} }
func RequiresAuth() Requirement  { return Requirement{Kind: KindRequiresAuth} }
func RequiresAdmin() Requirement { return Requirement{Kind: KindRequiresAdmin} }

// RedirectIfAuthed sends signed-in actors to target. With adminOnly, only admins are
// redirected.
func RedirectIfAuthed(target string, adminOnly bool) Requirement {
	return Requirement{Kind: KindRedirectIfAuthed, Target: target, AdminOnly: adminOnly}
}

// Decision is the outcome of a guard. RedirectTo is empty when Allowed.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect,omitempty"`
}

func Allow() Decision                   { return Decision{Allowed: true} }
func RedirectTo(target string) Decision { return Decision{RedirectTo: target} }

// GuardRoute decides whether actor may open a route with req. It has no side effects.
func GuardRoute(actor domain.ActorState, req Requirement) Decision {
	switch req.Kind {
	case KindPublic:
		return Allow()
	case KindRequiresAuth:
		if actor.Authenticated() {
			return Allow()
		}
		return RedirectTo(AuthPath)
	case KindRequiresAdmin:
		if actor.IsAdmin() {
			return Allow()
		}
		return RedirectTo(AdminLoginPath)
	case KindRedirectIfAuthed:
		authed := actor.Authenticated()
		if req.AdminOnly {
			authed = actor.IsAdmin()
		}
		if authed {
			return RedirectTo(req.Target)
		}
		return Allow()
	default:
		return RedirectTo(HomePath)
	}
}

// CanManageListing reports whether actor may edit or delete l.
func CanManageListing(actor domain.ActorState, l domain.Listing) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Authenticated() && actor.IdentityID != "" && actor.IdentityID == l.OwnerID
}
