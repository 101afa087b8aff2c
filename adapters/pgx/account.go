package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nvraman/suraksha/core"
)

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO public.accounts (id, email, display_name, phone_number, password_hash)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	err := a.pool.QueryRow(ctx, query,
		acc.ID, acc.Email, acc.DisplayName, acc.PhoneNumber, acc.PasswordHash,
	).Scan(&acc.CreatedAt)

	if err != nil {
		return mapError(err, core.ErrAccountExists)
	}

	return nil
}

func (a *Adapter) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	query := `SELECT id, email, display_name, phone_number, password_hash, created_at
	          FROM public.accounts WHERE email = $1`

	acc := &core.Account{}
	err := a.pool.QueryRow(ctx, query, email).Scan(
		&acc.ID, &acc.Email, &acc.DisplayName, &acc.PhoneNumber, &acc.PasswordHash, &acc.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, mapError(err, nil)
	}

	return acc, nil
}
