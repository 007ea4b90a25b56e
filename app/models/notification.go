package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationOrderConfirmed = "order_confirmed"
	NotificationPaymentFailed  = "payment_failed"
	NotificationShipment       = "shipment"
)

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type        string    `gorm:"type:varchar(50)" json:"type" validate:"oneof=order_confirmed payment_failed shipment"`
	Content     string    `gorm:"type:text" json:"content"`
	Delivered   bool      `gorm:"default:false" json:"delivered"`
	ReferenceID uint      `json:"reference_id"` // order or subscription the notification refers to
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreateNotification persists a delivery-attempt record for a notification.
func CreateNotification(db *gorm.DB, userID uint, notificationType string, content string, referenceID uint) error {
	notification := Notification{
		UserID:      userID,
		Type:        notificationType,
		Content:     content,
		ReferenceID: referenceID,
	}

	return db.Create(&notification).Error
}
