package repo

import (
	"context"
	"strings"

	"localserv/internal/domain"
	"localserv/internal/infra"
	"localserv/internal/sqlinline"
)

// AccountRepository implements domain.AccountStore.
type AccountRepository struct {
	sql infra.SQLExecutor
}

func NewAccountRepository(sql infra.SQLExecutor) *AccountRepository {
	return &AccountRepository{sql: sql}
}

// CreateAccount inserts the account together with its profile row.
func (r *AccountRepository) CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertAccount,
		strings.TrimSpace(account.Email),
		account.PasswordHash,
		strings.TrimSpace(account.Name),
		strings.TrimSpace(account.City),
	)
	out := account
	if err := row.Scan(&out.ID, &out.Email, &out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectAccountByEmail, strings.TrimSpace(email))
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.City, &a.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}
