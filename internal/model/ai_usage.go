package model

import "time"

// AIUsage records one successful call to the AI gateway.
type AIUsage struct {
	UserID           string    `db:"user_id" json:"user_id"`
	Action           string    `db:"action" json:"action"`
	Model            string    `db:"model" json:"model"`
	PromptTokens     int64     `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int64     `db:"completion_tokens" json:"completion_tokens"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
