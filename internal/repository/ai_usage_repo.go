package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vouchy/internal/model"
)

// AIUsageRepository tracks AI gateway calls for per-plan monthly limits.
type AIUsageRepository interface {
	// CountSince counts the user's AI calls recorded at or after since.
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	Record(ctx context.Context, u *model.AIUsage) error
}

type aiUsageRepo struct {
	db *sql.DB
}

func NewAIUsageRepo(db *sql.DB) AIUsageRepository {
	return &aiUsageRepo{db: db}
}

func (r *aiUsageRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const q = `
        SELECT COUNT(*)
        FROM ai_usage_logs
        WHERE user_id = $1
          AND created_at >= $2
    `
	var count int
	if err := r.db.QueryRowContext(ctx, q, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting ai usage for user %s: %w", userID, err)
	}
	return count, nil
}

func (r *aiUsageRepo) Record(ctx context.Context, u *model.AIUsage) error {
	const q = `
        INSERT INTO ai_usage_logs (user_id, action, model, prompt_tokens, completion_tokens)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	if err := r.db.QueryRowContext(ctx, q, u.UserID, u.Action, u.Model, u.PromptTokens, u.CompletionTokens).Scan(&u.CreatedAt); err != nil {
		return fmt.Errorf("recording ai usage for user %s: %w", u.UserID, err)
	}
	return nil
}
