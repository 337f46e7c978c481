package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vouchy/internal/model"
)

// ProfileRepository reads and updates user profiles and their plan.
type ProfileRepository interface {
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)
	// GetProfileByEmail matches case-insensitively and returns nil, nil when absent.
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
	UpdatePlan(ctx context.Context, id string, plan model.Plan) error
}

type profileRepo struct {
	db *sql.DB
}

// NewProfileRepo creates a new ProfileRepository.
func NewProfileRepo(db *sql.DB) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, email, plan, ai_limit_override, created_at, updated_at`

func (r *profileRepo) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", id, err)
	}
	return p, nil
}

func (r *profileRepo) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1) LIMIT 1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		return nil, fmt.Errorf("fetch profile by email: %w", err)
	}
	return p, nil
}

func (r *profileRepo) UpdatePlan(ctx context.Context, id string, plan model.Plan) error {
	const q = `UPDATE profiles SET plan = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, string(plan))
	if err != nil {
		return fmt.Errorf("update plan for profile %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update plan for profile %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update plan for profile %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func scanProfile(row *sql.Row) (*model.Profile, error) {
	var p model.Profile
	var plan string
	var override sql.NullInt64
	if err := row.Scan(&p.ID, &p.Email, &plan, &override, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Plan = model.Plan(plan)
	if override.Valid {
		v := int(override.Int64)
		p.AILimitOverride = &v
	}
	return &p, nil
}
