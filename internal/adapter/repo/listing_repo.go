package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"localserv/internal/domain"
	"localserv/internal/infra"
	"localserv/internal/sqlinline"
)

// ListingRepository implements domain.ListingStore.
type ListingRepository struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewListingRepository(sql infra.SQLExecutor) *ListingRepository {
	return &ListingRepository{sql: sql, now: time.Now}
}

func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListListingsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(listingDest(&l)...); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ListingRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountListingsByOwner, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListPublic returns active listings of unblocked owners: running highlights first,
// then owners with search priority, then latest highlight end, then newest.
func (r *ListingRepository) ListPublic(ctx context.Context, filter domain.PublicFilter) ([]domain.Listing, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListPublicListings, EscapeLike(strings.TrimSpace(filter.City)), r.now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		var l domain.Listing
		owner := &domain.ListingOwner{}
		dest := append(listingDest(&l), ownerDest(owner)...)
		dest = append(dest, &owner.PremiumBadge, &owner.Priority)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		l.Owner = owner
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ListingRepository) ListAll(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListAllListings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		var l domain.Listing
		owner := &domain.ListingOwner{}
		dest := append(listingDest(&l), &owner.Name, &owner.Email, &owner.City)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		l.Owner = owner
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ListingRepository) Count(ctx context.Context, activeOnly bool) (int, error) {
	var n int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountListings, activeOnly).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var l domain.Listing
	owner := &domain.ListingOwner{}
	dest := append(listingDest(&l), ownerDest(owner)...)
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectListingByID, id).Scan(dest...); err != nil {
		return nil, mapErr(err)
	}
	l.Owner = owner
	return &l, nil
}

func (r *ListingRepository) Create(ctx context.Context, ownerID string, input domain.ListingInput) (*domain.Listing, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertListing,
		uuid.NewString(), ownerID,
		input.Title, input.Description, input.Price, input.City, input.WhatsApp, input.ImageURL)
	return scanListing(row)
}

func (r *ListingRepository) Update(ctx context.Context, id string, input domain.ListingInput) (*domain.Listing, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateListing, id,
		input.Title, input.Description, input.Price, input.City, input.WhatsApp, input.ImageURL)
	return scanListing(row)
}

func (r *ListingRepository) SetActive(ctx context.Context, id string, active bool) error {
	return execOne(ctx, r.sql, sqlinline.QSetListingActive, id, active)
}

func (r *ListingRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	return execOne(ctx, r.sql, sqlinline.QSetListingVerified, id, verified)
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.sql, sqlinline.QDeleteListing, id)
}

// ClearExpiredHighlights drops the cached highlight end of listings whose boost ran out.
func (r *ListingRepository) ClearExpiredHighlights(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QClearExpiredHighlights, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(listingDest(&l)...); err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func listingDest(l *domain.Listing) []any {
	return []any{&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.City, &l.WhatsApp, &l.ImageURL,
		&l.Active, &l.Verified, &l.HighlightedUntil, &l.CreatedAt}
}

func ownerDest(o *domain.ListingOwner) []any {
	return []any{&o.Name, &o.City, &o.AvatarURL, &o.Bio, &o.Phone, &o.CreatedAt, &o.LastActiveAt}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
