package repository

import (
	"github.com/BrewBoxLabs/BrewBox/app/models"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByID(id uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByProviderID(providerSubID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := r.db.Where("razorpay_subscription_id = ?", providerSubID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) List(offset, limit int) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) ListByStatus(status string, offset, limit int) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Where("status = ?", status).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserSubscription{}).Count(&count).Error
	return count, err
}

func (r *subscriptionRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.UserSubscription{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *subscriptionRepository) BillingHistory(subscriptionID uint) ([]models.SubscriptionOrder, error) {
	var cycles []models.SubscriptionOrder
	err := r.db.Where("subscription_id = ?", subscriptionID).
		Order("billing_cycle ASC").
		Find(&cycles).Error
	return cycles, err
}
