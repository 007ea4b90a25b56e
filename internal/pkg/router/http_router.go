package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BrewBoxLabs/BrewBox/app/controllers"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/database"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/jobqueue"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/subscription"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	notifier := jobqueue.NewQueueNotifier(jobqueue.GetManager().GetQueue())
	svc := subscription.NewServiceFromDB(database.GetDB(), notifier)
	webhooks := controllers.NewWebhookController(svc)

	// Razorpay calls this endpoint directly; it authenticates via the
	// signature header, not the admin API key.
	app.Post("/webhooks/razorpay", webhooks.HandleRazorpayWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
