package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"localserv/internal/domain"
)

const minPasswordLength = 6

// ActivityRecorder marks an identity as recently active.
type ActivityRecorder interface {
	TouchLastActive(ctx context.Context, id string) error
}

// Provider authenticates accounts and keeps one session per client. Every session
// change is pushed to the client's subscribers in emission order.
type Provider struct {
	accounts domain.AccountStore
	activity ActivityRecorder
	secret   string
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
	hashCost int

	mu       sync.Mutex
	sessions map[string]*Session
	handlers map[string]map[uint64]Handler
	seq      uint64

	// serializes delivery so every subscriber sees events in emission order
	emitMu sync.Mutex
}

func NewProvider(accounts domain.AccountStore, activity ActivityRecorder, secret string, ttl time.Duration, logger zerolog.Logger) *Provider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Provider{
		accounts: accounts,
		activity: activity,
		secret:   secret,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
		sessions: make(map[string]*Session),
		handlers: make(map[string]map[uint64]Handler),
	}
}

// SignUp creates the account and its profile and signs the client in.
func (p *Provider) SignUp(ctx context.Context, clientID, email, password string, meta Metadata) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	meta.Name = strings.TrimSpace(meta.Name)
	meta.City = strings.TrimSpace(meta.City)
	account, err := p.accounts.CreateAccount(ctx, domain.Account{
		Email:        email,
		PasswordHash: string(hash),
		Name:         meta.Name,
		City:         meta.City,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info().Str("identity", account.ID).Msg("account created")
	return p.establish(clientID, User{ID: account.ID, Email: account.Email, Metadata: meta}, EventSignedIn)
}

// SignInWithPassword verifies the credentials and signs the client in.
func (p *Provider) SignInWithPassword(ctx context.Context, clientID, email, password string) (*Session, error) {
	account, err := p.accounts.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if p.activity != nil {
		if err := p.activity.TouchLastActive(ctx, account.ID); err != nil {
			p.logger.Warn().Err(err).Str("identity", account.ID).Msg("touch last active failed")
		}
	}
	user := User{ID: account.ID, Email: account.Email, Metadata: Metadata{Name: account.Name, City: account.City}}
	return p.establish(clientID, user, EventSignedIn)
}

// Refresh reissues the client's access token.
func (p *Provider) Refresh(_ context.Context, clientID string) (*Session, error) {
	p.mu.Lock()
	current, ok := p.sessions[clientID]
	p.mu.Unlock()
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return p.establish(clientID, current.User, EventTokenRefreshed)
}

// SignOut drops the client's session. It always emits EventSignedOut.
func (p *Provider) SignOut(_ context.Context, clientID string) error {
	p.mu.Lock()
	delete(p.sessions, clientID)
	p.mu.Unlock()
	p.emit(clientID, AuthEvent{Event: EventSignedOut})
	return nil
}

// GetSession returns the client's session, or nil when there is none. A session whose
// token no longer verifies is an error.
func (p *Provider) GetSession(_ context.Context, clientID string) (*Session, error) {
	p.mu.Lock()
	sess, ok := p.sessions[clientID]
	p.mu.Unlock()
	if !ok {
		return nil, nil
	}
	claims, err := VerifyJWT(p.secret, sess.AccessToken, p.now())
	if err != nil {
		p.drop(clientID, sess)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Sub != sess.User.ID {
		return nil, fmt.Errorf("%w: subject mismatch", domain.ErrUnauthorized)
	}
	out := *sess
	return &out, nil
}

// PruneExpired forgets sessions whose token has expired and returns how many were
// removed. No event is emitted; the client sees the expiry on its next check.
func (p *Provider) PruneExpired() int {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for id, sess := range p.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(p.sessions, id)
			n++
		}
	}
	return n
}

// drop removes the client's session unless it was replaced meanwhile.
func (p *Provider) drop(clientID string, sess *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessions[clientID] == sess {
		delete(p.sessions, clientID)
	}
}

// Subscribe registers handler for the client's events.
func (p *Provider) Subscribe(clientID string, handler Handler) Subscription {
	p.mu.Lock()
	p.seq++
	id := p.seq
	if p.handlers[clientID] == nil {
		p.handlers[clientID] = make(map[uint64]Handler)
	}
	p.handlers[clientID][id] = handler
	p.mu.Unlock()

	var once sync.Once
	return subscriptionFunc(func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.handlers[clientID], id)
			if len(p.handlers[clientID]) == 0 {
				delete(p.handlers, clientID)
			}
		})
	})
}

// ForClient scopes the provider to one client.
func (p *Provider) ForClient(clientID string) *Client {
	return &Client{provider: p, clientID: clientID}
}

func (p *Provider) establish(clientID string, user User, event Event) (*Session, error) {
	now := p.now()
	expires := now.Add(p.ttl)
	token, err := SignJWT(p.secret, TokenClaims{
		Sub:    user.ID,
		Email:  user.Email,
		Name:   user.Metadata.Name,
		City:   user.Metadata.City,
		Iat:    now.Unix(),
		Exp:    expires.Unix(),
		Issuer: tokenIssuer,
	})
	if err != nil {
		return nil, err
	}
	sess := &Session{AccessToken: token, ExpiresAt: expires, User: user}

	p.mu.Lock()
	p.sessions[clientID] = sess
	p.mu.Unlock()

	out := *sess
	p.emit(clientID, AuthEvent{Event: event, Session: &out})
	return sess, nil
}

func (p *Provider) emit(clientID string, event AuthEvent) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	handlers := make([]Handler, 0, len(p.handlers[clientID]))
	for _, h := range p.handlers[clientID] {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	p.logger.Debug().Str("client", clientID).Str("event", string(event.Event)).Int("subscribers", len(handlers)).Msg("auth event")
	for _, h := range handlers {
		h(event)
	}
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must have at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	return nil
}

// Client is the provider as seen by a single client.
type Client struct {
	provider *Provider
	clientID string
}

func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	return c.provider.GetSession(ctx, c.clientID)
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.provider.SignOut(ctx, c.clientID)
}

func (c *Client) Subscribe(handler Handler) Subscription {
	return c.provider.Subscribe(c.clientID, handler)
}
