package repository

import (
	"github.com/BrewBoxLabs/BrewBox/app/models"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Variants").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetActive(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Variants").
		Where("is_active = ?", true).
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetVariant(id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *productRepository) GetVariantByPlanID(planID string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.Where("razorpay_plan_id = ?", planID).First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}
