package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vouchy/internal/model"
)

type SpaceRepository interface {
	// GetSpaceByID returns nil, nil when no space has the given id.
	GetSpaceByID(ctx context.Context, id string) (*model.Space, error)
}

type spaceRepo struct {
	db *sql.DB
}

func NewSpaceRepo(db *sql.DB) SpaceRepository {
	return &spaceRepo{db: db}
}

func (r *spaceRepo) GetSpaceByID(ctx context.Context, id string) (*model.Space, error) {
	const q = `
        SELECT id, workspace_id, slug, name, questions, is_active, created_at, updated_at
        FROM spaces
        WHERE id = $1
    `
	var s model.Space
	var rawQuestions []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID,
		&s.WorkspaceID,
		&s.Slug,
		&s.Name,
		&rawQuestions,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch space %s: %w", id, err)
	}
	if len(rawQuestions) > 0 {
		if err := json.Unmarshal(rawQuestions, &s.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions for space %s: %w", id, err)
		}
	}
	return &s, nil
}
