package repository

import (
	"github.com/BrewBoxLabs/BrewBox/app/models"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(userID uint, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Count(&count).Error
	return count, err
}

func (r *orderRepository) UpdateShipment(id uint, courierName, trackingNumber string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"courier_name":    courierName,
			"tracking_number": trackingNumber,
			"status":          models.OrderStatusShipped,
		}).Error
}

func (r *orderRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Update("status", status).Error
}
