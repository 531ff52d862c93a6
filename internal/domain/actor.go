package domain

// Role enumerates the access level of the current actor.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleBlocked   Role = "blocked"
	RoleRegular   Role = "regular"
	RoleAdmin     Role = "admin"
)

// DefaultDisplayName is used when neither the profile nor the identity carries a name.
const DefaultDisplayName = "Usuário"

// ActorState describes who is using a client right now. It is derived, never persisted.
type ActorState struct {
	IdentityID  string `json:"id,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	Role        Role   `json:"role"`
	// Resolved reports whether the profile lookup finished (or the bounded wait expired).
	Resolved bool `json:"resolved"`
}

// AnonymousActor returns the state of a visitor without identity.
func AnonymousActor(resolved bool) ActorState {
	return ActorState{Role: RoleAnonymous, Resolved: resolved}
}

// Authenticated reports whether the actor may use member-only surfaces.
func (a ActorState) Authenticated() bool {
	return a.Role == RoleRegular || a.Role == RoleAdmin
}

// IsAdmin reports whether the actor holds the admin role.
func (a ActorState) IsAdmin() bool {
	return a.Role == RoleAdmin
}
