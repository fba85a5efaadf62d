package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ProfileRepository stores cosmetic display settings keyed by email.
type ProfileRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Upsert(ctx context.Context, profile *domain.Profile) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	const query = `SELECT email, display_name, avatar, updated_at FROM profiles WHERE LOWER(email)=LOWER($1)`
	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&profile.Email,
		&profile.DisplayName,
		&profile.Avatar,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (email, display_name, avatar)
        VALUES ($1,$2,$3)
        ON CONFLICT (email) DO UPDATE SET
            display_name=EXCLUDED.display_name, avatar=EXCLUDED.avatar, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.Email,
		profile.DisplayName,
		profile.Avatar,
	).Scan(&profile.UpdatedAt)
}
