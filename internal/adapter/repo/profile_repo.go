package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"localserv/internal/domain"
	"localserv/internal/infra"
	"localserv/internal/sqlinline"
)

// ProfileRepository implements domain.ProfileStore.
type ProfileRepository struct {
	sql infra.SQLExecutor
}

func NewProfileRepository(sql infra.SQLExecutor) *ProfileRepository {
	return &ProfileRepository{sql: sql}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QSelectProfileByID, id))
}

func (r *ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QSelectProfileByEmail, email))
}

// UpdateProfile applies the non-nil fields of update.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Profile, error) {
	update.Normalize()
	if update.Empty() {
		return r.GetProfile(ctx, id)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateProfile, id,
		update.Name, update.City, update.Phone, update.Bio, update.AvatarURL)
	return scanProfile(row)
}

func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListProfiles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProfileRepository) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountProfiles).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ProfileRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	return execOne(ctx, r.sql, sqlinline.QSetProfileBlocked, id, blocked)
}

func (r *ProfileRepository) SetAdmin(ctx context.Context, id string, admin bool) error {
	return execOne(ctx, r.sql, sqlinline.QSetProfileAdmin, id, admin)
}

func (r *ProfileRepository) TouchLastActive(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QTouchProfileActivity, id)
	return err
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.City, &p.Phone, &p.Bio, &p.AvatarURL,
		&p.IsAdmin, &p.Blocked, &p.CreatedAt, &p.LastActiveAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// execOne runs a single-row update and reports ErrNotFound when nothing matched.
func execOne(ctx context.Context, sql infra.SQLExecutor, query string, args ...any) error {
	tag, err := sql.Exec(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
