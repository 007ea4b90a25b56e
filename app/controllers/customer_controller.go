package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewBoxLabs/BrewBox/app/models"
	"github.com/BrewBoxLabs/BrewBox/app/repository"
)

type createCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// HandleListCustomers returns customer accounts for the admin dashboard.
func HandleListCustomers(c *fiber.Ctx) error {
	offset := parseOffset(c.Query("offset"))
	limit := parseLimit(c.Query("limit"), 50, 200)

	repo := repository.GetGlobalFactory().GetUserRepository()
	users, err := repo.List(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load customers"})
	}
	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count customers"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"customers": users,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

// HandleCreateCustomer creates a customer account on behalf of support staff.
func HandleCreateCustomer(c *fiber.Ctx) error {
	var req createCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "A customer with this email already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check for existing customer"})
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	user.Phone = req.Phone

	if err := repo.Create(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create customer"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"customer": user})
}

// HandleGetCustomer returns one customer with their orders.
func HandleGetCustomer(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid customer id"})
	}

	factory := repository.GetGlobalFactory()
	user, err := factory.GetUserRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Customer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load customer"})
	}

	orders, err := factory.GetOrderRepository().GetByUserID(user.ID, 0, 20)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load customer orders"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"customer": user,
		"orders":   orders,
	})
}
