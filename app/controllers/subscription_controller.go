package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewBoxLabs/BrewBox/app/models"
	"github.com/BrewBoxLabs/BrewBox/app/repository"
)

// HandleListSubscriptions returns the subscription ledger, optionally filtered
// by status, newest first.
func HandleListSubscriptions(c *fiber.Ctx) error {
	offset := parseOffset(c.Query("offset"))
	limit := parseLimit(c.Query("limit"), 50, 200)
	status := c.Query("status")

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()

	var subs []models.UserSubscription
	var err error
	if status != "" {
		subs, err = repo.ListByStatus(status, offset, limit)
	} else {
		subs, err = repo.List(offset, limit)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriptions"})
	}

	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count subscriptions"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"subscriptions": subs,
		"total":         total,
		"offset":        offset,
		"limit":         limit,
	})
}

// HandleGetSubscription returns one subscription together with its billing
// cycle history.
func HandleGetSubscription(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subscription id"})
	}

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	sub, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	history, err := repo.BillingHistory(sub.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load billing history"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"subscription":    sub,
		"billing_history": history,
	})
}

// HandlePauseSubscription marks a subscription paused. The provider side is
// expected to be paused through the Razorpay dashboard or API separately, the
// webhook then confirms the transition.
func HandlePauseSubscription(c *fiber.Ctx) error {
	return transitionSubscription(c, models.SubscriptionStatusPaused, map[string]bool{
		models.SubscriptionStatusActive: true,
	})
}

// HandleResumeSubscription marks a paused subscription active again.
func HandleResumeSubscription(c *fiber.Ctx) error {
	return transitionSubscription(c, models.SubscriptionStatusActive, map[string]bool{
		models.SubscriptionStatusPaused: true,
	})
}

// HandleCancelSubscription marks a subscription cancelled. Cancelling is
// allowed from any non-cancelled state.
func HandleCancelSubscription(c *fiber.Ctx) error {
	return transitionSubscription(c, models.SubscriptionStatusCancelled, map[string]bool{
		models.SubscriptionStatusActive: true,
		models.SubscriptionStatusPaused: true,
	})
}

func transitionSubscription(c *fiber.Ctx, target string, allowedFrom map[string]bool) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subscription id"})
	}

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	sub, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	// Repeating the target status is a no-op, not an error.
	if sub.Status == target {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"subscription": sub})
	}
	if !allowedFrom[sub.Status] {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Subscription is " + sub.Status})
	}

	if err := repo.UpdateStatus(sub.ID, target); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update subscription"})
	}
	sub.Status = target

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"subscription": sub})
}

func parseID(raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(n), nil
}

func parseOffset(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
