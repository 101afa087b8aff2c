package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nvraman/suraksha/core"
)

func (a *Adapter) GetProfile(ctx context.Context, id string) (*core.UserProfile, error) {
	query := `SELECT id, email, display_name, phone_number, role, created_at
	          FROM public.profiles WHERE id = $1`

	p := &core.UserProfile{}
	err := a.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.DisplayName, &p.PhoneNumber, &p.Role, &p.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrProfileNotFound
		}
		return nil, mapError(err, nil)
	}

	return p, nil
}

func (a *Adapter) CreateProfile(ctx context.Context, p *core.UserProfile) error {
	query := `INSERT INTO public.profiles (id, email, display_name, phone_number, role)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO NOTHING
	          RETURNING created_at`

	err := a.pool.QueryRow(ctx, query,
		p.ID, p.Email, p.DisplayName, p.PhoneNumber, p.Role,
	).Scan(&p.CreatedAt)

	if err != nil {
		// DO NOTHING suppresses the conflict, so an existing row surfaces
		// as no returned row rather than a unique violation.
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrProfileExists
		}
		return mapError(err, core.ErrProfileExists)
	}

	a.notifyChange(ctx, core.CollectionUsers)
	return nil
}

func (a *Adapter) PutProfile(ctx context.Context, p *core.UserProfile) error {
	query := `INSERT INTO public.profiles (id, email, display_name, phone_number, role)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO UPDATE SET
	            email = EXCLUDED.email,
	            display_name = EXCLUDED.display_name,
	            phone_number = EXCLUDED.phone_number,
	            role = EXCLUDED.role
	          RETURNING created_at`

	err := a.pool.QueryRow(ctx, query,
		p.ID, p.Email, p.DisplayName, p.PhoneNumber, p.Role,
	).Scan(&p.CreatedAt)

	if err != nil {
		return mapError(err, nil)
	}

	a.notifyChange(ctx, core.CollectionUsers)
	return nil
}
