package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"localserv/internal/domain"
	"localserv/internal/infra"
	"localserv/internal/sqlinline"
)

const activateAttempts = 2

// SubscriptionRepository implements domain.SubscriptionStore.
type SubscriptionRepository struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewSubscriptionRepository(sql infra.SQLExecutor) *SubscriptionRepository {
	return &SubscriptionRepository{sql: sql, now: time.Now}
}

// GetActiveSubscription returns nil, nil when the user has no subscription in effect.
func (r *SubscriptionRepository) GetActiveSubscription(ctx context.Context, userID string) (*domain.SubscriptionView, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectActiveSubscription, userID, r.now())
	sub, err := scanSubscription(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListPlans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.AdLimit, &p.HasPremiumBadge, &p.PriorityInSearch, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SubscriptionRepository) UpsertPlan(ctx context.Context, plan domain.Plan) (*domain.Plan, error) {
	plan.ID = strings.TrimSpace(plan.ID)
	plan.Name = strings.TrimSpace(plan.Name)
	if plan.ID == "" || plan.Name == "" {
		return nil, fmt.Errorf("%w: plan id and name are required", domain.ErrValidation)
	}
	if plan.AdLimit <= 0 {
		return nil, fmt.Errorf("%w: plan %s ad_limit must be positive", domain.ErrValidation, plan.ID)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertPlan,
		plan.ID, plan.Name, plan.Price, plan.AdLimit, plan.HasPremiumBadge, plan.PriorityInSearch)
	var p domain.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.AdLimit, &p.HasPremiumBadge, &p.PriorityInSearch, &p.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *SubscriptionRepository) ListSubscriptions(ctx context.Context) ([]domain.SubscriptionView, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListSubscriptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SubscriptionView
	for rows.Next() {
		var s domain.SubscriptionView
		dest := append(subscriptionDest(&s), &s.UserName, &s.UserEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ActivateSubscription deactivates prior subscriptions of the user and starts a new one
// that expires days from now.
func (r *SubscriptionRepository) ActivateSubscription(ctx context.Context, userID, planID string, days int) (*domain.SubscriptionView, error) {
	if days <= 0 {
		days = domain.DefaultSubscriptionDays
	}
	var err error
	for attempt := 0; attempt < activateAttempts; attempt++ {
		var sub *domain.SubscriptionView
		sub, err = scanSubscription(r.sql.QueryRow(ctx, sqlinline.QActivateSubscription, userID, planID, days))
		if err == nil {
			return sub, nil
		}
		// a concurrent activation for the same user won the active slot; the next
		// attempt deactivates it
		if !isUniqueViolation(err) {
			return nil, mapErr(err)
		}
	}
	return nil, fmt.Errorf("activate subscription: %w", err)
}

// ActivateHighlight records a highlight and extends the listing's cached end.
func (r *SubscriptionRepository) ActivateHighlight(ctx context.Context, listingID string, days int) (*domain.Highlight, error) {
	if days <= 0 {
		days = domain.DefaultHighlightDays
	}
	h, err := scanHighlight(r.sql.QueryRow(ctx, sqlinline.QActivateHighlight, listingID, days))
	if err != nil {
		return nil, mapErr(err)
	}
	return h, nil
}

func (r *SubscriptionRepository) ActiveHighlights(ctx context.Context, listingID string) ([]domain.Highlight, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListActiveHighlights, listingID, r.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Highlight
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

func (r *SubscriptionRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QExpireSubscriptions, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSubscription(row pgx.Row) (*domain.SubscriptionView, error) {
	var s domain.SubscriptionView
	if err := row.Scan(subscriptionDest(&s)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func subscriptionDest(s *domain.SubscriptionView) []any {
	return []any{&s.ID, &s.UserID, &s.PlanID, &s.PlanName, &s.AdLimit, &s.HasPremiumBadge, &s.PriorityInSearch,
		&s.ExpiresAt, &s.Status, &s.CreatedAt}
}

func scanHighlight(row pgx.Row) (*domain.Highlight, error) {
	var h domain.Highlight
	if err := row.Scan(&h.ID, &h.ListingID, &h.StartsAt, &h.EndsAt, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}
