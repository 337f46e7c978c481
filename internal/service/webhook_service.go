package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"vouchy/internal/metrics"
	"vouchy/internal/model"
	"vouchy/internal/pubsub"
	"vouchy/internal/repository"

	"github.com/rs/zerolog"
)

// Event types that activate or renew a paid plan.
var successEvents = []string{
	"payment.succeeded",
	"subscription.active",
	"subscription.renewed",
	"subscription.plan_changed",
}

// Event types that revert the customer to the free plan.
var cancelEvents = []string{
	"subscription.cancelled",
	"subscription.expired",
	"subscription.failed",
	"subscription.on_hold",
}

// defaultProductPlans maps Dodo product ids to plans.
var defaultProductPlans = map[string]model.Plan{
	"pdt_vouchy_pro_monthly":    model.PlanPro,
	"pdt_vouchy_pro_yearly":     model.PlanPro,
	"pdt_vouchy_agency_monthly": model.PlanAgency,
	"pdt_vouchy_agency_yearly":  model.PlanAgency,
}

const (
	BucketSuccess = "success"
	BucketCancel  = "cancel"
	BucketIgnored = "ignored"
)

// WebhookEvent is the subset of a Dodo Payments webhook the service reads.
type WebhookEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		ProductID      string `json:"product_id"`
		SubscriptionID string `json:"subscription_id"`
		PaymentID      string `json:"payment_id"`
		Customer       struct {
			CustomerID string `json:"customer_id"`
			Email      string `json:"email"`
			Name       string `json:"name"`
		} `json:"customer"`
		ProductCart []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"product_cart"`
	} `json:"data"`
}

// productID returns the subscription product, falling back to the first cart item.
func (e *WebhookEvent) productID() string {
	if e.Data.ProductID != "" {
		return e.Data.ProductID
	}
	for _, item := range e.Data.ProductCart {
		if item.ProductID != "" {
			return item.ProductID
		}
	}
	return ""
}

// WebhookResult describes what a webhook changed.
type WebhookResult struct {
	EventType string
	Bucket    string
	UserID    string
	Plan      model.Plan
}

// PlanChangedEvent is published after a plan is written.
type PlanChangedEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Plan       string    `json:"plan"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
}

type webhookService struct {
	secret       string
	productPlans map[string]model.Plan
	profiles     repository.ProfileRepository
	publisher    pubsub.Publisher
	topic        string
	logger       zerolog.Logger
}

// NewWebhookService creates a WebhookService. extraPlans extends the built-in
// product table; entries with an unknown plan are skipped.
func NewWebhookService(
	secret string,
	extraPlans map[string]string,
	profiles repository.ProfileRepository,
	publisher pubsub.Publisher,
	topic string,
	logger zerolog.Logger,
) WebhookService {
	lg := logger.With().Str("service", "WebhookService").Logger()
	plans := make(map[string]model.Plan, len(defaultProductPlans)+len(extraPlans))
	for id, p := range defaultProductPlans {
		plans[id] = p
	}
	for id, name := range extraPlans {
		p, err := model.ParsePlan(strings.TrimSpace(name))
		if err != nil {
			lg.Warn().Err(err).Str("product_id", id).Msg("Ignoring product plan mapping")
			continue
		}
		plans[strings.TrimSpace(id)] = p
	}
	if secret == "" {
		lg.Warn().Msg("DODO_WEBHOOK_SECRET is not set; webhook signatures will NOT be verified")
	}
	return &webhookService{
		secret:       secret,
		productPlans: plans,
		profiles:     profiles,
		publisher:    publisher,
		topic:        topic,
		logger:       lg,
	}
}

// ClassifyEvent returns the bucket an event type falls into.
func ClassifyEvent(eventType string) string {
	switch {
	case slices.Contains(successEvents, eventType):
		return BucketSuccess
	case slices.Contains(cancelEvents, eventType):
		return BucketCancel
	default:
		return BucketIgnored
	}
}

// VerifySignature checks an HMAC-SHA256 hex signature of payload. The
// signature may carry a "sha256=" prefix.
func VerifySignature(secret string, payload []byte, signature string) bool {
	sig := strings.TrimSpace(signature)
	sig = strings.TrimPrefix(sig, "sha256=")
	given, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil || len(given) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(given, mac.Sum(nil))
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.secret != "" {
		if signature == "" {
			return nil, ErrMissingSignature
		}
		if !VerifySignature(s.secret, payload, signature) {
			s.logger.Warn().Msg("Webhook signature mismatch")
			return nil, ErrInvalidSignature
		}
	} else {
		s.logger.Warn().Msg("Processing webhook without signature verification")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload", ErrInvalidInput)
	}

	bucket := ClassifyEvent(event.Type)
	metrics.WebhookEventsTotal.WithLabelValues(bucket).Inc()
	s.logger.Info().Str("event_type", event.Type).Str("bucket", bucket).Msg("Webhook received")

	result := &WebhookResult{EventType: event.Type, Bucket: bucket}
	if bucket == BucketIgnored {
		return result, nil
	}

	plan := model.PlanFree
	if bucket == BucketSuccess {
		productID := event.productID()
		p, ok := s.productPlans[productID]
		if !ok {
			s.logger.Error().Str("product_id", productID).Msg("No plan mapped for product")
			return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
		}
		plan = p
	}

	email := strings.TrimSpace(event.Data.Customer.Email)
	if email == "" {
		return nil, missingField("data.customer.email")
	}
	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to look up customer profile")
		return nil, fmt.Errorf("look up customer: %w", err)
	}
	if profile == nil {
		s.logger.Warn().Str("event_type", event.Type).Msg("No profile for webhook customer")
		return nil, ErrCustomerNotFound
	}

	if err := s.profiles.UpdatePlan(ctx, profile.ID, plan); err != nil {
		s.logger.Error().Err(err).Str("user_id", profile.ID).Str("plan", string(plan)).Msg("Failed to update plan")
		return nil, fmt.Errorf("update plan: %w", err)
	}
	s.logger.Info().Str("user_id", profile.ID).Str("from", string(profile.Plan)).Str("to", string(plan)).Msg("Plan updated from webhook")

	s.publishPlanChanged(ctx, PlanChangedEvent{
		UserID:     profile.ID,
		Email:      profile.Email,
		Plan:       string(plan),
		EventType:  event.Type,
		OccurredAt: time.Now().UTC(),
	})

	result.UserID = profile.ID
	result.Plan = plan
	return result, nil
}

// publishPlanChanged never fails the webhook; errors are logged.
func (s *webhookService) publishPlanChanged(ctx context.Context, ev PlanChangedEvent) {
	if s.publisher == nil || s.topic == "" {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal plan change event")
		return
	}
	if _, err := s.publisher.Publish(ctx, s.topic, data); err != nil {
		s.logger.Error().Err(err).Str("topic", s.topic).Msg("Failed to publish plan change event")
	}
}
