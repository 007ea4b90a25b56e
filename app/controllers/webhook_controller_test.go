package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewBoxLabs/BrewBox/app/models"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/razorpay"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/subscription"
)

// stubRepo satisfies the reconciliation repository with just enough behavior
// for endpoint tests: it records webhook log writes and reports everything
// else as not found.
type stubRepo struct {
	logs          []*models.WebhookLog
	failCreateLog error
}

func (s *stubRepo) CreateWebhookLog(row *models.WebhookLog) error {
	if s.failCreateLog != nil {
		return s.failCreateLog
	}
	row.ID = uint(len(s.logs) + 1)
	s.logs = append(s.logs, row)
	return nil
}

func (s *stubRepo) MarkWebhookProcessed(id uint, processingError string) error { return nil }

func (s *stubRepo) SubscriptionByProviderID(providerSubID string) (*models.UserSubscription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) PendingByProviderID(providerSubID string) (*models.PendingSubscription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) PromotePending(pending *models.PendingSubscription, sub *models.UserSubscription) error {
	return nil
}

func (s *stubRepo) CreateSubscription(sub *models.UserSubscription) error { return nil }

func (s *stubRepo) UpdateSubscriptionStatus(id uint, status string) error { return nil }

func (s *stubRepo) UpdateLastPaymentStatus(id uint, status string) error { return nil }

func (s *stubRepo) VariantByID(id uint) (*models.ProductVariant, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) VariantByPlanID(planID string) (*models.ProductVariant, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UserByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) MaterializeChargeOrder(sub *models.UserSubscription, amount, unitPrice float64, paymentRef string, billingDate time.Time) (*models.Order, bool, error) {
	return nil, false, nil
}

func newWebhookTestApp(repo *stubRepo) *fiber.App {
	app := fiber.New()
	svc := subscription.NewService(repo, nil, nil)
	wc := NewWebhookController(svc)
	app.Post("/webhooks/razorpay", wc.HandleRazorpayWebhook)
	return app
}

func webhookRequest(body []byte, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestRazorpayWebhook_InvalidSignature(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_test")

	repo := &stubRepo{}
	app := newWebhookTestApp(repo)

	body := []byte(`{"event":"subscription.charged","payload":{}}`)
	resp, err := app.Test(webhookRequest(body, map[string]string{
		"X-Razorpay-Signature": "deadbeef",
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if len(repo.logs) != 0 {
		t.Fatalf("rejected delivery must not be logged, got %d rows", len(repo.logs))
	}
}

func TestRazorpayWebhook_MissingSecret(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")

	repo := &stubRepo{}
	app := newWebhookTestApp(repo)

	resp, err := app.Test(webhookRequest([]byte(`{}`), nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 when no secret is configured", resp.StatusCode)
	}
}

func TestRazorpayWebhook_ValidSignature(t *testing.T) {
	secret := "whsec_test"
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", secret)

	repo := &stubRepo{}
	app := newWebhookTestApp(repo)

	body := []byte(`{
		"event": "subscription.charged",
		"payload": {
			"subscription": {"entity": {"id": "sub_1"}},
			"payment": {"entity": {"id": "pay_1", "amount": 50000}}
		}
	}`)
	resp, err := app.Test(webhookRequest(body, map[string]string{
		"X-Razorpay-Signature": razorpay.SignPayload(body, secret),
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]bool
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if !decoded["received"] {
		t.Fatalf("response = %s, want {\"received\": true}", raw)
	}

	if len(repo.logs) != 1 {
		t.Fatalf("expected delivery to be logged, got %d rows", len(repo.logs))
	}
	if repo.logs[0].EventType != "subscription.charged" {
		t.Fatalf("log event type = %q", repo.logs[0].EventType)
	}
}

func TestRazorpayWebhook_AcknowledgesInternalFailure(t *testing.T) {
	secret := "whsec_test"
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", secret)

	repo := &stubRepo{failCreateLog: errors.New("db down")}
	app := newWebhookTestApp(repo)

	body := []byte(`{"event":"subscription.paused","payload":{"subscription":{"entity":{"id":"sub_1"}}}}`)
	resp, err := app.Test(webhookRequest(body, map[string]string{
		"X-Razorpay-Signature": razorpay.SignPayload(body, secret),
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, internal failures must still acknowledge with 200", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]bool
	if err := json.Unmarshal(raw, &decoded); err != nil || !decoded["received"] {
		t.Fatalf("response = %s, want {\"received\": true}", raw)
	}
}

func TestRazorpayWebhook_InternalRetryBypass(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("INTERNAL_QUEUE_SECRET", "replay-secret")

	repo := &stubRepo{}
	app := newWebhookTestApp(repo)

	body := []byte(`{"event":"subscription.paused","payload":{"subscription":{"entity":{"id":"sub_1"}}}}`)

	// Correct bypass header skips signature verification.
	resp, err := app.Test(webhookRequest(body, map[string]string{
		"X-Internal-Queue-Retry": "replay-secret",
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 via internal bypass", resp.StatusCode)
	}
	if len(repo.logs) != 1 {
		t.Fatalf("bypassed delivery should be logged")
	}

	// Wrong bypass value falls through to signature verification and fails.
	resp, err = app.Test(webhookRequest(body, map[string]string{
		"X-Internal-Queue-Retry": "wrong",
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a bad bypass value", resp.StatusCode)
	}
}
