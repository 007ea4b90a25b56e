package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/BrewBoxLabs/BrewBox/app/controllers"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/database"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/jobqueue"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/middleware"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/subscription"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "BrewBox admin API",
		})
	})

	notifier := jobqueue.NewQueueNotifier(jobqueue.GetManager().GetQueue())
	svc := subscription.NewServiceFromDB(database.GetDB(), notifier)
	webhooks := controllers.NewWebhookController(svc)

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())

	v1.Get("/subscriptions", controllers.HandleListSubscriptions)
	v1.Get("/subscriptions/:id", controllers.HandleGetSubscription)
	v1.Post("/subscriptions/:id/pause", controllers.HandlePauseSubscription)
	v1.Post("/subscriptions/:id/resume", controllers.HandleResumeSubscription)
	v1.Post("/subscriptions/:id/cancel", controllers.HandleCancelSubscription)

	v1.Get("/orders", controllers.HandleListOrders)
	v1.Get("/orders/:id", controllers.HandleGetOrder)
	v1.Post("/orders/:id/shipment", controllers.HandleCreateShipment)
	v1.Get("/orders/:id/tracking", controllers.HandleTrackShipment)

	v1.Get("/products", controllers.HandleListProducts)
	v1.Get("/products/:id", controllers.HandleGetProduct)

	v1.Get("/customers", controllers.HandleListCustomers)
	v1.Post("/customers", controllers.HandleCreateCustomer)
	v1.Get("/customers/:id", controllers.HandleGetCustomer)

	v1.Get("/webhook-logs", webhooks.HandleListWebhookLogs)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
