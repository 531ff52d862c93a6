package session

import (
	"context"
	"strings"

	"localserv/internal/domain"
	"localserv/internal/identity"
)

// enrich derives the actor of sess from its profile. The returned role may be
// RoleBlocked; callers never commit that role.
func (r *Resolver) enrich(ctx context.Context, sess *identity.Session) domain.ActorState {
	profile, err := r.profiles.GetProfile(ctx, sess.User.ID)
	if err != nil {
		r.logger.Warn().Err(err).Str("identity", sess.User.ID).Msg("profile fetch failed, degrading to regular")
		return degradedActor(sess)
	}
	if profile.Blocked {
		return domain.ActorState{IdentityID: sess.User.ID, Email: sess.User.Email, Role: domain.RoleBlocked}
	}
	role := domain.RoleRegular
	if profile.IsAdmin {
		role = domain.RoleAdmin
	}
	return domain.ActorState{
		IdentityID:  sess.User.ID,
		Email:       sess.User.Email,
		DisplayName: displayName(profile.Name, sess),
		Role:        role,
	}
}

// degradedActor is used when the profile cannot be read: the identity stays signed in
// as a regular user named from provider data only.
func degradedActor(sess *identity.Session) domain.ActorState {
	return domain.ActorState{
		IdentityID:  sess.User.ID,
		Email:       sess.User.Email,
		DisplayName: displayName("", sess),
		Role:        domain.RoleRegular,
	}
}

func displayName(profileName string, sess *identity.Session) string {
	for _, candidate := range []string{
		profileName,
		sess.User.Metadata.Name,
		domain.EmailLocalPart(sess.User.Email),
	} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}
	return domain.DefaultDisplayName
}
