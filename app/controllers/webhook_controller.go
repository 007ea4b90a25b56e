package controllers

import (
	"context"
	"crypto/subtle"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/BrewBoxLabs/BrewBox/app/repository"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/env"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/razorpay"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/subscription"
)

// WebhookController terminates the Razorpay webhook endpoint. Signature
// verification happens here, over the raw request body, before any decoding.
type WebhookController struct {
	svc *subscription.Service
}

func NewWebhookController(svc *subscription.Service) *WebhookController {
	return &WebhookController{svc: svc}
}

// HandleRazorpayWebhook receives subscription lifecycle events from Razorpay.
// Once the signature checks out the provider always gets a 200 back, even when
// processing fails internally, so Razorpay does not retry events we already
// logged. Failures stay queryable through the webhook log.
func (wc *WebhookController) HandleRazorpayWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Razorpay-Signature"))
	secret := env.GetEnv("RAZORPAY_WEBHOOK_SECRET", "")

	if !internalRetryBypass(c) {
		if secret == "" {
			log.Print("razorpay webhook: RAZORPAY_WEBHOOK_SECRET is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook secret not configured"})
		}
		if !razorpay.VerifyWebhookSignature(rawBody, signature, secret) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outcome := wc.svc.HandleDelivery(ctx, rawBody)
	if !outcome.OK() {
		log.Printf("razorpay webhook: processing failed: %v", outcome.Err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// HandleListWebhookLogs returns the most recent webhook log rows for operator
// reconciliation.
func (wc *WebhookController) HandleListWebhookLogs(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 50, 200)
	repo := repository.GetGlobalFactory().GetWebhookLogRepository()

	var err error
	var logs interface{}
	if c.QueryBool("unprocessed") {
		logs, err = repo.Unprocessed(limit)
	} else {
		logs, err = repo.Recent(limit)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load webhook logs"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"logs": logs})
}

// internalRetryBypass allows the in-cluster retry worker to replay a stored
// payload without re-signing it. The shared secret comes from env and is
// compared in constant time.
func internalRetryBypass(c *fiber.Ctx) bool {
	header := strings.TrimSpace(c.Get("X-Internal-Queue-Retry"))
	expected := env.GetEnv("INTERNAL_QUEUE_SECRET", "")
	if header == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(expected)) == 1
}

func parseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
