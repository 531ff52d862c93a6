package domain

import (
	"context"
	"time"
)

// AccountStore persists credentials for the identity provider.
type AccountStore interface {
	// CreateAccount inserts the account and its profile row. It returns ErrEmailTaken
	// when the address is already registered.
	CreateAccount(ctx context.Context, account Account) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
}

// ProfileStore defines access methods for profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	CountProfiles(ctx context.Context) (int, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	SetAdmin(ctx context.Context, id string, admin bool) error
	TouchLastActive(ctx context.Context, id string) error
}

// ListingStore defines persistence for listings.
type ListingStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]Listing, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	ListPublic(ctx context.Context, filter PublicFilter) ([]Listing, error)
	ListAll(ctx context.Context) ([]Listing, error)
	Count(ctx context.Context, activeOnly bool) (int, error)
	GetByID(ctx context.Context, id string) (*Listing, error)
	Create(ctx context.Context, ownerID string, input ListingInput) (*Listing, error)
	Update(ctx context.Context, id string, input ListingInput) (*Listing, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetVerified(ctx context.Context, id string, verified bool) error
	Delete(ctx context.Context, id string) error
	ClearExpiredHighlights(ctx context.Context, now time.Time) (int64, error)
}

// SubscriptionStore handles plans, subscriptions and highlights.
type SubscriptionStore interface {
	// GetActiveSubscription returns the in-effect subscription, or nil when there is none.
	GetActiveSubscription(ctx context.Context, userID string) (*SubscriptionView, error)
	ListPlans(ctx context.Context) ([]Plan, error)
	UpsertPlan(ctx context.Context, plan Plan) (*Plan, error)
	ListSubscriptions(ctx context.Context) ([]SubscriptionView, error)
	// ActivateSubscription deactivates every active subscription of userID before
	// inserting the new one.
	ActivateSubscription(ctx context.Context, userID, planID string, days int) (*SubscriptionView, error)
	ActivateHighlight(ctx context.Context, listingID string, days int) (*Highlight, error)
	ActiveHighlights(ctx context.Context, listingID string) ([]Highlight, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}
