package domain

import "time"

const (
	// UnlimitedAdLimit is the plan limit the catalog uses for "no cap".
	UnlimitedAdLimit = 999
	// DefaultAdLimit applies when no subscription is in effect.
	DefaultAdLimit = 3

	DefaultSubscriptionDays = 30
	DefaultHighlightDays    = 7
)

// SubscriptionStatus is the stored state of a subscription row.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// Plan is an entry of the plan catalog.
type Plan struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Price            float64   `json:"price" yaml:"price"`
	AdLimit          int       `json:"ad_limit" yaml:"ad_limit"`
	HasPremiumBadge  bool      `json:"has_premium_badge" yaml:"has_premium_badge"`
	PriorityInSearch bool      `json:"priority_search" yaml:"priority_search"`
	CreatedAt        time.Time `json:"created_at" yaml:"-"`
}

// Unlimited reports whether the plan has no listing cap.
func (p Plan) Unlimited() bool {
	return p.AdLimit == UnlimitedAdLimit
}

// SubscriptionView is the read-only projection of a subscription joined with its plan.
type SubscriptionView struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	PlanID           string             `json:"plan_id"`
	PlanName         string             `json:"plan_name"`
	AdLimit          int                `json:"ad_limit"`
	HasPremiumBadge  bool               `json:"has_premium_badge"`
	PriorityInSearch bool               `json:"priority_search"`
	ExpiresAt        time.Time          `json:"expires_at"`
	Status           SubscriptionStatus `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	// Filled by the admin listing only.
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// InEffect reports whether the subscription is active and expires strictly after now.
func (s *SubscriptionView) InEffect(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.Status == SubscriptionActive && s.ExpiresAt.After(now)
}

// EffectiveAdLimit returns the listing cap granted by sub at now. Absent, expired, or
// non-positive limits fall back to DefaultAdLimit.
func EffectiveAdLimit(sub *SubscriptionView, now time.Time) int {
	if !sub.InEffect(now) || sub.AdLimit <= 0 {
		return DefaultAdLimit
	}
	return sub.AdLimit
}

// Highlight is a time-boxed promotional boost of one listing.
type Highlight struct {
	ID        string    `json:"id"`
	ListingID string    `json:"service_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}
