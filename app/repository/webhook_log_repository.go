package repository

import (
	"github.com/BrewBoxLabs/BrewBox/app/models"
	"gorm.io/gorm"
)

type webhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a new webhook log repository instance
func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

func (r *webhookLogRepository) Recent(limit int) ([]models.WebhookLog, error) {
	var logs []models.WebhookLog
	err := r.db.Limit(limit).Order("received_at DESC").Find(&logs).Error
	return logs, err
}

func (r *webhookLogRepository) Unprocessed(limit int) ([]models.WebhookLog, error) {
	var logs []models.WebhookLog
	err := r.db.Where("processed = ?", false).
		Limit(limit).
		Order("received_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *webhookLogRepository) GetByID(id uint) (*models.WebhookLog, error) {
	var row models.WebhookLog
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
