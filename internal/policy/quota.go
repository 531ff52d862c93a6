package policy

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"localserv/internal/domain"
)

// SubscriptionReader reads the in-effect subscription of a user.
type SubscriptionReader interface {
	GetActiveSubscription(ctx context.Context, userID string) (*domain.SubscriptionView, error)
}

// ListingCounter counts a user's listings.
type ListingCounter interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// Reason explains a quota decision.
type Reason string

const (
	ReasonWithinLimit     Reason = "within_limit"
	ReasonUnlimited       Reason = "unlimited"
	ReasonLimitReached    Reason = "limit_reached"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonUnavailable     Reason = "unavailable"
)

// QuotaDecision is the result of CheckListingQuota. A denial carries the limit and
// where to send the user.
type QuotaDecision struct {
	Allowed    bool   `json:"allowed"`
	Reason     Reason `json:"reason"`
	Used       int    `json:"used"`
	Limit      int    `json:"limit"`
	Unlimited  bool   `json:"unlimited"`
	PlanName   string `json:"plan_name,omitempty"`
	RedirectTo string `json:"redirect,omitempty"`
}

// QuotaChecker enforces the listing quota of the actor's plan. Every check reads the
// subscription and the listing count fresh.
type QuotaChecker struct {
	subs     SubscriptionReader
	listings ListingCounter
	logger   zerolog.Logger
	now      func() time.Time
}

func NewQuotaChecker(subs SubscriptionReader, listings ListingCounter, logger zerolog.Logger) *QuotaChecker {
	return &QuotaChecker{subs: subs, listings: listings, logger: logger, now: time.Now}
}

// CheckListingQuota allows a new listing iff the actor owns fewer listings than the
// limit of their in-effect plan (DefaultAdLimit without one). Read failures deny.
func (q *QuotaChecker) CheckListingQuota(ctx context.Context, actor domain.ActorState) QuotaDecision {
	if !actor.Authenticated() || actor.IdentityID == "" {
		return QuotaDecision{Reason: ReasonUnauthenticated, RedirectTo: AuthPath}
	}
	sub, err := q.subs.GetActiveSubscription(ctx, actor.IdentityID)
	if err != nil {
		return q.quotaUnavailable(actor, err)
	}
	used, err := q.listings.CountByOwner(ctx, actor.IdentityID)
	if err != nil {
		return q.quotaUnavailable(actor, err)
	}
	return decide(sub, used, q.now())
}

func decide(sub *domain.SubscriptionView, used int, now time.Time) QuotaDecision {
	limit := domain.EffectiveAdLimit(sub, now)
	d := QuotaDecision{Used: used, Limit: limit}
	if sub.InEffect(now) {
		d.PlanName = sub.PlanName
	}
	switch {
	case limit == domain.UnlimitedAdLimit:
		d.Allowed = true
		d.Unlimited = true
		d.Reason = ReasonUnlimited
	case used >= limit:
		d.Reason = ReasonLimitReached
		d.RedirectTo = PlansPath
	default:
		d.Allowed = true
		d.Reason = ReasonWithinLimit
	}
	return d
}

// quotaUnavailable fails closed: a failed read never permits a write.
func (q *QuotaChecker) quotaUnavailable(actor domain.ActorState, err error) QuotaDecision {
	q.logger.Warn().Err(err).Str("identity", actor.IdentityID).Msg("listing quota unavailable")
	return QuotaDecision{Reason: ReasonUnavailable}
}
