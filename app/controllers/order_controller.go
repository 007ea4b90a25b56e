package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewBoxLabs/BrewBox/app/repository"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/jobqueue"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/shipping"
)

// HandleListOrders returns orders newest first.
func HandleListOrders(c *fiber.Ctx) error {
	offset := parseOffset(c.Query("offset"))
	limit := parseLimit(c.Query("limit"), 50, 200)

	repo := repository.GetGlobalFactory().GetOrderRepository()
	orders, err := repo.List(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load orders"})
	}
	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count orders"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"orders": orders,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleGetOrder returns a single order with its items.
func HandleGetOrder(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid order id"})
	}

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load order"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"order": order})
}

type createShipmentRequest struct {
	Courier     string `json:"courier"`
	WeightGrams int    `json:"weight_grams"`
}

// HandleCreateShipment books a shipment with the requested courier and stores
// the tracking number on the order. Label archival runs async in the job queue.
func HandleCreateShipment(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid order id"})
	}

	var req createShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load order"})
	}

	if order.TrackingNumber != "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Order already has a shipment"})
	}
	if order.ShippingAddress.IsEmpty() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable", "message": "Order has no shipping address"})
	}

	provider, err := shipping.ProviderByName(req.Courier)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shipment, err := provider.CreateShipment(ctx, shipping.ShipmentRequest{
		OrderID:     order.ID,
		Reference:   fmt.Sprintf("BB-%d", order.ID),
		Address:     order.ShippingAddress,
		WeightGrams: req.WeightGrams,
	})
	if err != nil {
		log.Printf("shipment booking with %s failed for order %d: %v", provider.Name(), order.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "courier_error", "message": "Courier rejected the shipment"})
	}

	if err := repo.UpdateShipment(order.ID, shipment.CourierName, shipment.TrackingNumber); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store shipment"})
	}

	if queue := jobqueue.GetManager().GetQueue(); queue != nil {
		payload := jobqueue.ShipmentLabelJobPayload{OrderID: order.ID}
		if _, err := queue.EnqueueJob(jobqueue.JobTypeShipmentLabel, payload.ToMap()); err != nil {
			log.Printf("failed to enqueue label job for order %d: %v", order.ID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"courier":         shipment.CourierName,
		"tracking_number": shipment.TrackingNumber,
	})
}

// HandleTrackShipment proxies tracking events from the courier.
func HandleTrackShipment(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid order id"})
	}

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load order"})
	}
	if order.TrackingNumber == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable", "message": "Order has no shipment"})
	}

	provider, err := shipping.ProviderByName(order.CourierName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events, err := provider.TrackShipment(ctx, order.TrackingNumber)
	if err != nil {
		log.Printf("tracking lookup with %s failed for order %d: %v", provider.Name(), order.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "courier_error", "message": "Courier tracking unavailable"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"courier":         order.CourierName,
		"tracking_number": order.TrackingNumber,
		"events":          events,
	})
}
