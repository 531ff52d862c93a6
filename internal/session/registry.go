package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ClientFactory scopes the identity provider to one client.
type ClientFactory func(clientID string) IdentityClient

type entry struct {
	resolver *Resolver
	lastSeen time.Time
}

// Registry keeps one started Resolver per client id and disposes of idle ones.
type Registry struct {
	clients  ClientFactory
	profiles ProfileReader
	wait     time.Duration
	idleTTL  time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
	onSweep []func()
}

func NewRegistry(clients ClientFactory, profiles ProfileReader, wait, idleTTL time.Duration, logger zerolog.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		clients:  clients,
		profiles: profiles,
		wait:     wait,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*entry),
	}
}

// Get returns the resolver of clientID, creating and starting it on first use.
func (g *Registry) Get(clientID string) (*Resolver, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, ErrClosed
	}
	if e, ok := g.entries[clientID]; ok {
		e.lastSeen = g.now()
		return e.resolver, nil
	}
	res := NewResolver(g.clients(clientID), g.profiles, g.wait, g.logger.With().Str("client", clientID).Logger())
	res.Start(g.ctx)
	g.entries[clientID] = &entry{resolver: res, lastSeen: g.now()}
	g.logger.Debug().Str("client", clientID).Int("clients", len(g.entries)).Msg("session resolver created")
	return res, nil
}

// Len reports the number of live resolvers.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// OnSweep registers fn to run after every Sweep, for housekeeping that shares the
// registry's schedule.
func (g *Registry) OnSweep(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onSweep = append(g.onSweep, fn)
}

// Sweep disposes of resolvers not used within the idle TTL and returns how many
// were removed.
func (g *Registry) Sweep() int {
	cutoff := g.now().Add(-g.idleTTL)
	var idle []*Resolver
	g.mu.Lock()
	for id, e := range g.entries {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.resolver)
			delete(g.entries, id)
		}
	}
	hooks := append([]func(){}, g.onSweep...)
	g.mu.Unlock()

	for _, res := range idle {
		res.Close()
	}
	for _, fn := range hooks {
		fn()
	}
	if len(idle) > 0 {
		g.logger.Debug().Int("evicted", len(idle)).Msg("idle session resolvers evicted")
	}
	return len(idle)
}

// Run sweeps periodically until ctx is done.
func (g *Registry) Run(ctx context.Context) {
	interval := g.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}

// Close disposes of every resolver.
func (g *Registry) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	all := make([]*Resolver, 0, len(g.entries))
	for id, e := range g.entries {
		all = append(all, e.resolver)
		delete(g.entries, id)
	}
	g.mu.Unlock()

	g.cancel()
	for _, res := range all {
		res.Close()
	}
}
