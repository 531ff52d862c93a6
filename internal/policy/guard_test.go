package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"localserv/internal/domain"
)

var (
	anonymous = domain.AnonymousActor(true)
	regular   = domain.ActorState{IdentityID: "u1", Role: domain.RoleRegular, Resolved: true}
	admin     = domain.ActorState{IdentityID: "a1", Role: domain.RoleAdmin, Resolved: true}
)

func TestGuardRoute(t *testing.T) {
	cases := []struct {
		name  string
		actor domain.ActorState
		req   Requirement
		want  Decision
	}{
		{"public anonymous", anonymous, Public(), Allow()},
		{"public admin", admin, Public(), Allow()},
		{"auth anonymous", anonymous, RequiresAuth(), RedirectTo(AuthPath)},
		{"auth regular", regular, RequiresAuth(), Allow()},
		{"auth admin", admin, RequiresAuth(), Allow()},
		{"admin anonymous", anonymous, RequiresAdmin(), RedirectTo(AdminLoginPath)},
		{"admin regular", regular, RequiresAdmin(), RedirectTo(AdminLoginPath)},
		{"admin admin", admin, RequiresAdmin(), Allow()},
		{"auth page anonymous", anonymous, RedirectIfAuthed(HomePath, false), Allow()},
		{"auth page regular", regular, RedirectIfAuthed(HomePath, false), RedirectTo(HomePath)},
		{"admin login regular", regular, RedirectIfAuthed(AdminHomePath, true), Allow()},
		{"admin login admin", admin, RedirectIfAuthed(AdminHomePath, true), RedirectTo(AdminHomePath)},
		{"blocked is not authenticated", domain.ActorState{Role: domain.RoleBlocked}, RequiresAuth(), RedirectTo(AuthPath)},
		{"unknown kind", admin, Requirement{Kind: Kind(42)}, RedirectTo(HomePath)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GuardRoute(tc.actor, tc.req)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, GuardRoute(tc.actor, tc.req), "guard must be idempotent")
		})
	}
}

func TestGuardUsesRouteTable(t *testing.T) {
	cases := []struct {
		path  string
		actor domain.ActorState
		want  Decision
	}{
		{"/", anonymous, Allow()},
		{"/service/0b9f", anonymous, Allow()},
		{"/service/", anonymous, RedirectTo(HomePath)},
		{"/create", anonymous, RedirectTo(AuthPath)},
		{"/dashboard/", regular, Allow()},
		{"/profile", regular, Allow()},
		{"/auth", regular, RedirectTo(HomePath)},
		{"/admin/login", admin, RedirectTo(AdminHomePath)},
		{"/admin/login", regular, Allow()},
		{"/admin/users", regular, RedirectTo(AdminLoginPath)},
		{"/admin/monetization", admin, Allow()},
		{"/nope", admin, RedirectTo(HomePath)},
		{"/service/1/extra", anonymous, RedirectTo(HomePath)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Guard(tc.actor, tc.path), tc.path)
	}
}

func TestMatchExtractsParams(t *testing.T) {
	rt, params, ok := Match("/service/abc-123")
	assert.True(t, ok)
	assert.Equal(t, "/service/{id}", rt.Pattern)
	assert.Equal(t, map[string]string{"id": "abc-123"}, params)

	req, ok := RequirementFor("/admin")
	assert.True(t, ok)
	assert.Equal(t, KindRequiresAdmin, req.Kind)
}

func TestCanManageListing(t *testing.T) {
	own := domain.Listing{OwnerID: "u1"}
	other := domain.Listing{OwnerID: "u2"}
	assert.True(t, CanManageListing(regular, own))
	assert.False(t, CanManageListing(regular, other))
	assert.True(t, CanManageListing(admin, other))
	assert.False(t, CanManageListing(anonymous, domain.Listing{}))
}
