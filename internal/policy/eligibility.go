package policy

import (
	"time"

	"localserv/internal/domain"
)

// BadgeEligible reports whether sub grants the premium badge at now.
func BadgeEligible(sub *domain.SubscriptionView, now time.Time) bool {
	return sub.InEffect(now) && sub.HasPremiumBadge
}

// PriorityEligible reports whether sub ranks its owner's listings first at now.
func PriorityEligible(sub *domain.SubscriptionView, now time.Time) bool {
	return sub.InEffect(now) && sub.PriorityInSearch
}
