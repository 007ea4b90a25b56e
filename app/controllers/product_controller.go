package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/BrewBoxLabs/BrewBox/app/repository"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/cache"
)

const catalogCacheTTL = 5 * time.Minute

// HandleListProducts returns the active catalog with variants. The catalog
// changes rarely, so pages are cached in Redis.
func HandleListProducts(c *fiber.Ctx) error {
	offset := parseOffset(c.Query("offset"))
	limit := parseLimit(c.Query("limit"), 50, 200)

	cacheKey := fmt.Sprintf("catalog:active:%d:%d", offset, limit)
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set("Content-Type", "application/json")
		return c.Status(fiber.StatusOK).SendString(cached)
	}

	repo := repository.GetGlobalFactory().GetProductRepository()
	products, err := repo.GetActive(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load products"})
	}

	response := fiber.Map{
		"products": products,
		"offset":   offset,
		"limit":    limit,
	}
	if encoded, err := json.Marshal(response); err == nil {
		_ = cache.Set(cacheKey, string(encoded), catalogCacheTTL)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// HandleGetProduct returns one product with its variants.
func HandleGetProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid product id"})
	}

	repo := repository.GetGlobalFactory().GetProductRepository()
	product, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load product"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"product": product})
}
