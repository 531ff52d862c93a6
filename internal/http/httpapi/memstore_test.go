package httpapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"localserv/internal/domain"
)

// memStore backs every store interface with maps for router tests.
type memStore struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]domain.Account
	profiles map[string]*domain.Profile
	listings []*domain.Listing
	subs     map[string]*domain.SubscriptionView
	plans    []domain.Plan
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]domain.Account),
		profiles: make(map[string]*domain.Profile),
		subs:     make(map[string]*domain.SubscriptionView),
		plans: []domain.Plan{
			{ID: "basic", Name: "Básico", Price: 19.9, AdLimit: 10},
			{ID: "pro", Name: "Profissional", Price: 49.9, AdLimit: domain.UnlimitedAdLimit, HasPremiumBadge: true, PriorityInSearch: true},
		},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) CreateAccount(_ context.Context, acc domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[acc.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	acc.ID = m.nextID("user")
	acc.CreatedAt = time.Now()
	m.accounts[acc.Email] = acc
	m.profiles[acc.ID] = &domain.Profile{ID: acc.ID, Name: acc.Name, Email: acc.Email, City: acc.City, CreatedAt: acc.CreatedAt}
	return &acc, nil
}

func (m *memStore) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &acc, nil
}

func (m *memStore) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	m.mu.Lock()
	acc, ok := m.accounts[email]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.GetProfile(ctx, acc.ID)
}

func (m *memStore) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.Profile, error) {
	u.Normalize()
	m.mu.Lock()
	p, ok := m.profiles[id]
	if ok {
		if u.Name != nil {
			p.Name = *u.Name
		}
		if u.City != nil {
			p.City = *u.City
		}
		if u.Phone != nil {
			p.Phone = *u.Phone
		}
		if u.Bio != nil {
			p.Bio = *u.Bio
		}
		if u.AvatarURL != nil {
			p.AvatarURL = *u.AvatarURL
		}
	}
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.GetProfile(ctx, id)
}

func (m *memStore) ListProfiles(context.Context) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) CountProfiles(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles), nil
}

func (m *memStore) setProfile(id string, fn func(p *domain.Profile)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(p)
	return nil
}

func (m *memStore) SetBlocked(_ context.Context, id string, blocked bool) error {
	return m.setProfile(id, func(p *domain.Profile) { p.Blocked = blocked })
}

func (m *memStore) SetAdmin(_ context.Context, id string, admin bool) error {
	return m.setProfile(id, func(p *domain.Profile) { p.IsAdmin = admin })
}

func (m *memStore) TouchLastActive(_ context.Context, id string) error {
	now := time.Now()
	return m.setProfile(id, func(p *domain.Profile) { p.LastActiveAt = &now })
}

func (m *memStore) idFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[email].ID
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Listing, error) {
	return m.collect(func(l *domain.Listing) bool { return l.OwnerID == ownerID }), nil
}

func (m *memStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	items, _ := m.ListByOwner(ctx, ownerID)
	return len(items), nil
}

func (m *memStore) ListPublic(_ context.Context, f domain.PublicFilter) ([]domain.Listing, error) {
	city := strings.ToLower(f.City)
	return m.collect(func(l *domain.Listing) bool {
		return l.Active && strings.Contains(strings.ToLower(l.City), city)
	}), nil
}

func (m *memStore) ListAll(context.Context) ([]domain.Listing, error) {
	return m.collect(func(*domain.Listing) bool { return true }), nil
}

func (m *memStore) Count(_ context.Context, activeOnly bool) (int, error) {
	return len(m.collect(func(l *domain.Listing) bool { return !activeOnly || l.Active })), nil
}

func (m *memStore) collect(keep func(*domain.Listing) bool) []domain.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Listing
	for _, l := range m.listings {
		if keep(l) {
			out = append(out, *l)
		}
	}
	return out
}

func (m *memStore) find(id string) (*domain.Listing, int) {
	for i, l := range m.listings {
		if l.ID == id {
			return l, i
		}
	}
	return nil, -1
}

func (m *memStore) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, _ := m.find(id)
	if l == nil {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, ownerID string, in domain.ListingInput) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := &domain.Listing{
		ID: m.nextID("listing"), OwnerID: ownerID, Title: in.Title, Description: in.Description,
		Price: in.Price, City: in.City, WhatsApp: in.WhatsApp, ImageURL: in.ImageURL,
		Active: true, CreatedAt: time.Now(),
	}
	m.listings = append(m.listings, l)
	cp := *l
	return &cp, nil
}

func (m *memStore) Update(ctx context.Context, id string, in domain.ListingInput) (*domain.Listing, error) {
	m.mu.Lock()
	l, _ := m.find(id)
	if l != nil {
		l.Title, l.Description, l.Price, l.City = in.Title, in.Description, in.Price, in.City
		l.WhatsApp, l.ImageURL = in.WhatsApp, in.ImageURL
	}
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *memStore) setListing(id string, fn func(l *domain.Listing)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, _ := m.find(id)
	if l == nil {
		return domain.ErrNotFound
	}
	fn(l)
	return nil
}

func (m *memStore) SetActive(_ context.Context, id string, active bool) error {
	return m.setListing(id, func(l *domain.Listing) { l.Active = active })
}

func (m *memStore) SetVerified(_ context.Context, id string, verified bool) error {
	return m.setListing(id, func(l *domain.Listing) { l.Verified = verified })
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, i := m.find(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	m.listings = append(m.listings[:i], m.listings[i+1:]...)
	return nil
}

func (m *memStore) ClearExpiredHighlights(context.Context, time.Time) (int64, error) { return 0, nil }

func (m *memStore) GetActiveSubscription(_ context.Context, userID string) (*domain.SubscriptionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (m *memStore) ListPlans(context.Context) ([]domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Plan(nil), m.plans...), nil
}

func (m *memStore) UpsertPlan(_ context.Context, p domain.Plan) (*domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, p)
	return &p, nil
}

func (m *memStore) ListSubscriptions(context.Context) ([]domain.SubscriptionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SubscriptionView
	for _, s := range m.subs {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStore) ActivateSubscription(_ context.Context, userID, planID string, days int) (*domain.SubscriptionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.ID != planID {
			continue
		}
		sub := &domain.SubscriptionView{
			ID: m.nextID("sub"), UserID: userID, PlanID: p.ID, PlanName: p.Name, AdLimit: p.AdLimit,
			HasPremiumBadge: p.HasPremiumBadge, PriorityInSearch: p.PriorityInSearch,
			ExpiresAt: time.Now().AddDate(0, 0, days), Status: domain.SubscriptionActive, CreatedAt: time.Now(),
		}
		m.subs[userID] = sub
		cp := *sub
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ActivateHighlight(_ context.Context, listingID string, days int) (*domain.Highlight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, _ := m.find(listingID)
	if l == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	end := now.AddDate(0, 0, days)
	l.HighlightedUntil = &end
	return &domain.Highlight{ID: m.nextID("hl"), ListingID: listingID, StartsAt: now, EndsAt: end, CreatedAt: now}, nil
}

func (m *memStore) ActiveHighlights(context.Context, string) ([]domain.Highlight, error) { return nil, nil }

func (m *memStore) ExpireSubscriptions(context.Context, time.Time) (int64, error) { return 0, nil }

var (
	_ domain.AccountStore      = (*memStore)(nil)
	_ domain.ProfileStore      = (*memStore)(nil)
	_ domain.ListingStore      = (*memStore)(nil)
	_ domain.SubscriptionStore = (*memStore)(nil)
)
