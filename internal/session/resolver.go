package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"localserv/internal/domain"
	"localserv/internal/identity"
)

// DefaultBootstrapWait caps how long the actor may stay unresolved after Start.
const DefaultBootstrapWait = 6000 * time.Millisecond

// NoticeAccountSuspended is queued when a blocked account is signed out.
const NoticeAccountSuspended = "account_suspended"

var ErrClosed = errors.New("session resolver closed")

// IdentityClient is the client-scoped identity provider.
type IdentityClient interface {
	GetSession(ctx context.Context) (*identity.Session, error)
	SignOut(ctx context.Context) error
	Subscribe(handler identity.Handler) identity.Subscription
}

// ProfileReader loads the authorization inputs of an identity.
type ProfileReader interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

type queuedEvent struct {
	epoch uint64
	event identity.AuthEvent
}

// Resolver owns the ActorState of one client. It is the only writer of that state:
// the initial session check and every provider event go through commit, and a
// result is committed only if no newer check or event has started since.
type Resolver struct {
	client   IdentityClient
	profiles ProfileReader
	wait     time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	state   domain.ActorState
	epoch   uint64 // latest started transition
	settled uint64 // latest transition that finished, committed or dropped
	forced  uint64 // epoch at which the bounded wait fired, 0 if it never did
	started bool
	closed  bool
	timer   *time.Timer
	notice  string
	changed chan struct{}
	queue   []queuedEvent
	sub     identity.Subscription

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewResolver(client IdentityClient, profiles ProfileReader, wait time.Duration, logger zerolog.Logger) *Resolver {
	if wait <= 0 {
		wait = DefaultBootstrapWait
	}
	return &Resolver{
		client:   client,
		profiles: profiles,
		wait:     wait,
		logger:   logger,
		state:    domain.AnonymousActor(false),
		changed:  make(chan struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start arms the bounded wait, subscribes to the provider and runs the initial
// session check in the background. Calling Start more than once is a no-op.
func (r *Resolver) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.closed {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	initial := r.beginLocked()
	r.timer = time.AfterFunc(r.wait, r.forceResolved)
	r.mu.Unlock()

	sub := r.client.Subscribe(r.handle)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		sub.Unsubscribe()
		close(r.done)
		return
	}
	r.sub = sub
	r.mu.Unlock()

	go r.run(ctx, initial)
}

// ResolveInitialSession checks the provider for an existing session and commits the
// resulting actor.
func (r *Resolver) ResolveInitialSession(ctx context.Context) domain.ActorState {
	return r.resolveInitial(ctx, r.begin())
}

// OnIdentityEvent applies a provider event.
func (r *Resolver) OnIdentityEvent(ctx context.Context, ev identity.AuthEvent) domain.ActorState {
	return r.apply(ctx, r.begin(), ev)
}

// State returns a copy of the current actor.
func (r *Resolver) State() domain.ActorState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until the actor is resolved and the latest transition has finished,
// the bounded wait fired for it, or ctx is done.
func (r *Resolver) Wait(ctx context.Context) (domain.ActorState, error) {
	for {
		r.mu.Lock()
		if r.closed {
			state := r.state
			r.mu.Unlock()
			return state, ErrClosed
		}
		if r.state.Resolved && (r.settled >= r.epoch || r.forced >= r.epoch) {
			state := r.state
			r.mu.Unlock()
			return state, nil
		}
		ch := r.changed
		r.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return r.State(), ctx.Err()
		}
	}
}

// TakeNotice returns the pending one-time notice and clears it.
func (r *Resolver) TakeNotice() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.notice
	r.notice = ""
	return n
}

// Close unsubscribes from the provider, stops the timer and aborts in-flight work.
// No state changes are applied afterwards.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
	}
	sub := r.sub
	r.sub = nil
	cancel := r.cancel
	started := r.started
	r.broadcastLocked()
	r.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	if started {
		<-r.done
	}
}

func (r *Resolver) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.beginLocked()
}

func (r *Resolver) beginLocked() uint64 {
	r.epoch++
	return r.epoch
}

// handle is the provider subscription. SIGNED_OUT is applied in place; events that
// need a profile read are queued for the run loop.
func (r *Resolver) handle(ev identity.AuthEvent) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	epoch := r.beginLocked()
	if ev.Event != identity.EventSignedOut {
		r.queue = append(r.queue, queuedEvent{epoch: epoch, event: ev})
		r.mu.Unlock()
		select {
		case r.wake <- struct{}{}:
		default:
		}
		return
	}
	r.mu.Unlock()
	r.apply(context.Background(), epoch, ev)
}

func (r *Resolver) run(ctx context.Context, initial uint64) {
	defer close(r.done)
	r.resolveInitial(ctx, initial)
	for {
		for {
			item, ok := r.dequeue()
			if !ok {
				break
			}
			if r.stale(item.epoch) {
				r.finish(item.epoch)
				continue
			}
			r.apply(ctx, item.epoch, item.event)
		}
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
		}
	}
}

func (r *Resolver) dequeue() (queuedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return queuedEvent{}, false
	}
	item := r.queue[0]
	r.queue = r.queue[1:]
	return item, true
}

func (r *Resolver) stale(epoch uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed || epoch != r.epoch
}

func (r *Resolver) resolveInitial(ctx context.Context, epoch uint64) domain.ActorState {
	sess, err := r.client.GetSession(ctx)
	if err != nil {
		r.logger.Debug().Err(err).Msg("session check failed")
		sess = nil
	}
	return r.settle(ctx, epoch, "INITIAL", sess)
}

func (r *Resolver) apply(ctx context.Context, epoch uint64, ev identity.AuthEvent) domain.ActorState {
	switch ev.Event {
	case identity.EventSignedOut:
		r.commit(epoch, string(ev.Event), domain.AnonymousActor(true), "")
		return r.State()
	case identity.EventSignedIn, identity.EventTokenRefreshed:
		return r.settle(ctx, epoch, string(ev.Event), ev.Session)
	default:
		r.finish(epoch)
		return r.State()
	}
}

// settle enriches sess and commits the outcome. A blocked account is committed as
// anonymous with a notice and then signed out.
func (r *Resolver) settle(ctx context.Context, epoch uint64, cause string, sess *identity.Session) domain.ActorState {
	if !validSession(sess) {
		r.commit(epoch, cause, domain.AnonymousActor(true), "")
		return r.State()
	}
	actor := r.enrich(ctx, sess)
	if actor.Role != domain.RoleBlocked {
		r.commit(epoch, cause, actor, "")
		return r.State()
	}
	// the transition stays unsettled until the provider has dropped the session
	if r.store(epoch, cause, domain.AnonymousActor(true), NoticeAccountSuspended, false) {
		r.logger.Info().Str("identity", sess.User.ID).Msg("blocked account signed out")
		if err := r.client.SignOut(ctx); err != nil {
			r.logger.Warn().Err(err).Str("identity", sess.User.ID).Msg("sign out of blocked account failed")
		}
		r.finish(epoch)
	}
	return r.State()
}

// commit stores actor if epoch is still the latest transition and the resolver is
// alive. It reports whether the state was written.
func (r *Resolver) commit(epoch uint64, cause string, actor domain.ActorState, notice string) bool {
	return r.store(epoch, cause, actor, notice, true)
}

func (r *Resolver) store(epoch uint64, cause string, actor domain.ActorState, notice string, settle bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	stale := r.closed || epoch != r.epoch
	if (settle || stale) && epoch > r.settled {
		r.settled = epoch
	}
	if stale {
		r.logger.Debug().Str("event", cause).Uint64("epoch", epoch).Uint64("latest", r.epoch).Msg("stale session result dropped")
		r.broadcastLocked()
		return false
	}
	actor.Resolved = true
	r.state = actor
	if notice != "" {
		r.notice = notice
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.logger.Debug().Str("event", cause).Str("role", string(actor.Role)).Uint64("epoch", epoch).Msg("actor committed")
	r.broadcastLocked()
	return true
}

func (r *Resolver) finish(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch > r.settled {
		r.settled = epoch
	}
	r.broadcastLocked()
}

// forceResolved is the bounded-wait fallback. It flips Resolved without touching
// the role.
func (r *Resolver) forceResolved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.forced = r.epoch
	if r.state.Resolved {
		return
	}
	r.state.Resolved = true
	r.logger.Warn().Dur("wait", r.wait).Str("role", string(r.state.Role)).Msg("session bootstrap timed out")
	r.broadcastLocked()
}

func (r *Resolver) broadcastLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}

func validSession(sess *identity.Session) bool {
	return sess != nil && sess.User.ID != ""
}
