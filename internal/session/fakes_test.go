package session

import (
	"context"
	"sync"
	"sync/atomic"

	"localserv/internal/domain"
	"localserv/internal/identity"
)

type fakeClient struct {
	mu       sync.Mutex
	handlers map[int]identity.Handler
	next     int
	session  *identity.Session
	err      error
	gate     chan struct{}
	signOuts atomic.Int32
}

func newFakeClient(sess *identity.Session) *fakeClient {
	return &fakeClient{handlers: make(map[int]identity.Handler), session: sess}
}

func (c *fakeClient) GetSession(ctx context.Context) (*identity.Session, error) {
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.err
}

func (c *fakeClient) SignOut(context.Context) error {
	c.signOuts.Add(1)
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.emit(identity.AuthEvent{Event: identity.EventSignedOut})
	return nil
}

func (c *fakeClient) Subscribe(h identity.Handler) identity.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	id := c.next
	c.handlers[id] = h
	return unsubscribeFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	})
}

func (c *fakeClient) subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

func (c *fakeClient) emit(ev identity.AuthEvent) {
	c.mu.Lock()
	hs := make([]identity.Handler, 0, len(c.handlers))
	for _, h := range c.handlers {
		hs = append(hs, h)
	}
	c.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

type unsubscribeFunc func()

func (f unsubscribeFunc) Unsubscribe() { f() }

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	err      error
	gate     chan struct{}
	calls    atomic.Int32
}

func newFakeProfiles(ps ...domain.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[string]domain.Profile)}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func sessionFor(id, email, metaName string) *identity.Session {
	return &identity.Session{
		AccessToken: "token-" + id,
		User:        identity.User{ID: id, Email: email, Metadata: identity.Metadata{Name: metaName}},
	}
}
