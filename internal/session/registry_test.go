package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localserv/internal/domain"
)

func TestRegistryReusesAndEvicts(t *testing.T) {
	clients := map[string]*fakeClient{}
	factory := func(id string) IdentityClient {
		c := newFakeClient(nil)
		clients[id] = c
		return c
	}
	g := NewRegistry(factory, newFakeProfiles(), time.Second, time.Minute, zerolog.Nop())
	defer g.Close()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	a, err := g.Get("a")
	require.NoError(t, err)
	again, err := g.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = g.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	state, err := a.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAnonymous, state.Role)

	now = now.Add(45 * time.Second)
	_, _ = g.Get("b")
	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, g.Sweep())
	assert.Equal(t, 1, g.Len())
	assert.Zero(t, clients["a"].subscribers())

	fresh, err := g.Get("a")
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
}

func TestRegistrySweepRunsHooks(t *testing.T) {
	g := NewRegistry(func(string) IdentityClient { return newFakeClient(nil) }, newFakeProfiles(), time.Second, time.Minute, zerolog.Nop())
	defer g.Close()
	calls := 0
	g.OnSweep(func() { calls++ })
	g.Sweep()
	g.Sweep()
	assert.Equal(t, 2, calls)
}

func TestRegistryClose(t *testing.T) {
	g := NewRegistry(func(string) IdentityClient { return newFakeClient(nil) }, newFakeProfiles(), time.Second, time.Minute, zerolog.Nop())
	_, err := g.Get("a")
	require.NoError(t, err)
	g.Close()
	assert.Zero(t, g.Len())
	_, err = g.Get("a")
	assert.ErrorIs(t, err, ErrClosed)
}
