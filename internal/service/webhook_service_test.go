package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"vouchy/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func eventBody(eventType, productID, email string) []byte {
	return []byte(`{"business_id":"bus_1","type":"` + eventType + `","timestamp":"2026-10-15T10:00:00Z","data":{"payload_type":"Subscription","product_id":"` + productID + `","subscription_id":"sub_1","customer":{"customer_id":"cus_1","email":"` + email + `","name":"Jane"}}}`)
}

func newTestWebhookService(secret string, pub *fakePublisher) (WebhookService, *fakeProfileRepo) {
	profiles := newFakeProfileRepo(&model.Profile{ID: "user-1", Email: "jane@example.com", Plan: model.PlanFree})
	return NewWebhookService(secret, map[string]string{"pdt_custom": "agency", "pdt_bad": "platinum"}, profiles, pub, "plan-events", zerolog.Nop()), profiles
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"payment.succeeded"}`)
	sig := sign(testWebhookSecret, body)

	assert.True(t, VerifySignature(testWebhookSecret, body, sig))
	assert.True(t, VerifySignature(testWebhookSecret, body, "sha256="+sig))
	assert.False(t, VerifySignature(testWebhookSecret, body, sign("other", body)))
	assert.False(t, VerifySignature(testWebhookSecret, body, "not-hex"))
	assert.False(t, VerifySignature(testWebhookSecret, body, ""))
}

func TestClassifyEvent(t *testing.T) {
	assert.Equal(t, BucketSuccess, ClassifyEvent("subscription.active"))
	assert.Equal(t, BucketSuccess, ClassifyEvent("payment.succeeded"))
	assert.Equal(t, BucketCancel, ClassifyEvent("subscription.cancelled"))
	assert.Equal(t, BucketCancel, ClassifyEvent("subscription.expired"))
	assert.Equal(t, BucketIgnored, ClassifyEvent("refund.succeeded"))
}

func TestHandleEventActivatesPlan(t *testing.T) {
	pub := &fakePublisher{}
	svc, profiles := newTestWebhookService(testWebhookSecret, pub)
	body := eventBody("subscription.active", "pdt_vouchy_pro_monthly", "jane@example.com")

	res, err := svc.HandleEvent(context.Background(), body, sign(testWebhookSecret, body))
	require.NoError(t, err)

	assert.Equal(t, model.PlanPro, res.Plan)
	assert.Equal(t, "user-1", res.UserID)
	assert.Equal(t, model.PlanPro, profiles.updates["user-1"])

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "plan-events", pub.topic)
	var ev PlanChangedEvent
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	assert.Equal(t, "pro", ev.Plan)
	assert.Equal(t, "subscription.active", ev.EventType)
}

func TestHandleEventConfiguredProduct(t *testing.T) {
	svc, profiles := newTestWebhookService(testWebhookSecret, &fakePublisher{})
	body := eventBody("subscription.renewed", "pdt_custom", "jane@example.com")

	_, err := svc.HandleEvent(context.Background(), body, "sha256="+sign(testWebhookSecret, body))
	require.NoError(t, err)
	assert.Equal(t, model.PlanAgency, profiles.updates["user-1"])

	body = eventBody("subscription.renewed", "pdt_bad", "jane@example.com")
	_, err = svc.HandleEvent(context.Background(), body, sign(testWebhookSecret, body))
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestHandleEventPaymentCart(t *testing.T) {
	svc, profiles := newTestWebhookService(testWebhookSecret, &fakePublisher{})
	body := []byte(`{"type":"payment.succeeded","data":{"payment_id":"pay_1","product_cart":[{"product_id":"pdt_vouchy_agency_yearly","quantity":1}],"customer":{"email":"jane@example.com"}}}`)

	_, err := svc.HandleEvent(context.Background(), body, sign(testWebhookSecret, body))
	require.NoError(t, err)
	assert.Equal(t, model.PlanAgency, profiles.updates["user-1"])
}

func TestHandleEventCancelRevertsToFree(t *testing.T) {
	svc, profiles := newTestWebhookService(testWebhookSecret, &fakePublisher{})
	profiles.profiles["user-1"].Plan = model.PlanPro
	body := eventBody("subscription.cancelled", "pdt_whatever", "jane@example.com")

	res, err := svc.HandleEvent(context.Background(), body, sign(testWebhookSecret, body))
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, res.Plan)
	assert.Equal(t, model.PlanFree, profiles.updates["user-1"])
}

func TestHandleEventFailures(t *testing.T) {
	svc, profiles := newTestWebhookService(testWebhookSecret, &fakePublisher{})
	ctx := context.Background()
	body := eventBody("subscription.active", "pdt_vouchy_pro_monthly", "jane@example.com")

	_, err := svc.HandleEvent(ctx, body, "")
	assert.ErrorIs(t, err, ErrMissingSignature)

	_, err = svc.HandleEvent(ctx, body, sign("wrong", body))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	unknown := eventBody("subscription.active", "pdt_unknown", "jane@example.com")
	_, err = svc.HandleEvent(ctx, unknown, sign(testWebhookSecret, unknown))
	assert.ErrorIs(t, err, ErrUnknownProduct)

	stranger := eventBody("subscription.active", "pdt_vouchy_pro_monthly", "nobody@example.com")
	_, err = svc.HandleEvent(ctx, stranger, sign(testWebhookSecret, stranger))
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	garbage := []byte(`{not json`)
	_, err = svc.HandleEvent(ctx, garbage, sign(testWebhookSecret, garbage))
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, profiles.updates)
}

func TestHandleEventIgnoredType(t *testing.T) {
	svc, profiles := newTestWebhookService(testWebhookSecret, &fakePublisher{})
	body := eventBody("refund.succeeded", "", "jane@example.com")

	res, err := svc.HandleEvent(context.Background(), body, sign(testWebhookSecret, body))
	require.NoError(t, err)
	assert.Equal(t, BucketIgnored, res.Bucket)
	assert.Empty(t, profiles.updates)
}

func TestHandleEventWithoutSecretSkipsVerification(t *testing.T) {
	svc, profiles := newTestWebhookService("", &fakePublisher{})
	body := eventBody("subscription.active", "pdt_vouchy_pro_yearly", "jane@example.com")

	_, err := svc.HandleEvent(context.Background(), body, "")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, profiles.updates["user-1"])
}
