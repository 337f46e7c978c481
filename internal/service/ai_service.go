package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vouchy/internal/llm"
	"vouchy/internal/metrics"
	"vouchy/internal/model"
	"vouchy/internal/repository"

	"github.com/rs/zerolog"
)

// AIService runs the testimonial AI helpers against the LLM gateway.
//
// The monthly quota is best effort: usage is counted before the gateway call
// and recorded after it, so concurrent requests from one user may exceed the
// limit by the number of calls in flight.
type AIService interface {
	Run(ctx context.Context, userID string, req AIRequest) (any, error)
}

// AILimits maps plans to monthly call limits. A negative limit is unlimited.
type AILimits map[model.Plan]int

type aiService struct {
	client   llm.Client
	profiles repository.ProfileRepository
	usage    repository.AIUsageRepository
	limits   AILimits
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAIService creates an AIService. client may be nil when the gateway is
// not configured; requests then fail with ErrNotConfigured.
func NewAIService(client llm.Client, profiles repository.ProfileRepository, usage repository.AIUsageRepository, limits AILimits, logger zerolog.Logger) AIService {
	return &aiService{
		client:   client,
		profiles: profiles,
		usage:    usage,
		limits:   limits,
		now:      time.Now,
		logger:   logger.With().Str("service", "AIService").Logger(),
	}
}

func (s *aiService) Run(ctx context.Context, userID string, req AIRequest) (any, error) {
	system, user, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, fmt.Errorf("AI gateway is %w", ErrNotConfigured)
	}
	if err := s.checkQuota(ctx, userID); err != nil {
		return nil, err
	}

	completion, err := s.client.Complete(ctx, system, user)
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(req.Action, "error").Inc()
		s.logger.Error().Err(err).Str("action", req.Action).Str("user_id", userID).Msg("AI gateway call failed")
		if errors.Is(err, llm.ErrRateLimited) {
			return nil, ErrGatewayRateLimit
		}
		return nil, fmt.Errorf("AI gateway: %w", err)
	}
	metrics.AIRequestsTotal.WithLabelValues(req.Action, "ok").Inc()

	if err := s.usage.Record(ctx, &model.AIUsage{
		UserID:           userID,
		Action:           req.Action,
		Model:            completion.Model,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
	}); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record AI usage")
	}

	switch req.Action {
	case ActionGenerateScript:
		return parseScript(completion.Content), nil
	case ActionEnhanceText:
		return parseEnhanced(completion.Content), nil
	default:
		return parseSummary(completion.Content), nil
	}
}

func (s *aiService) checkQuota(ctx context.Context, userID string) error {
	profile, err := s.profiles.GetProfileByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	plan := model.PlanFree
	if profile != nil && profile.Plan != "" {
		plan = profile.Plan
	}
	limit, ok := s.limits[plan]
	if !ok {
		limit = s.limits[model.PlanFree]
	}
	if profile != nil && profile.AILimitOverride != nil {
		limit = *profile.AILimitOverride
	}
	if limit < 0 {
		return nil
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	used, err := s.usage.CountSince(ctx, userID, monthStart)
	if err != nil {
		return fmt.Errorf("count ai usage: %w", err)
	}
	if used >= limit {
		s.logger.Info().Str("user_id", userID).Str("plan", string(plan)).Int("used", used).Int("limit", limit).Msg("AI quota exhausted")
		return ErrAIQuotaExceeded
	}
	return nil
}
