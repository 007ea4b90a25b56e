package repository

import (
	"github.com/BrewBoxLabs/BrewBox/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ProductRepository defines the interface for catalog database operations
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetActive(offset, limit int) ([]models.Product, error)
	GetVariant(id uint) (*models.ProductVariant, error)
	GetVariantByPlanID(planID string) (*models.ProductVariant, error)
}

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	GetByID(id uint) (*models.Order, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Order, error)
	List(offset, limit int) ([]models.Order, error)
	Count() (int64, error)
	UpdateShipment(id uint, courierName, trackingNumber string) error
	UpdateStatus(id uint, status string) error
}

// SubscriptionRepository defines the interface for subscription ledger reads
// and the operator-driven status transitions the admin API exposes.
type SubscriptionRepository interface {
	GetByID(id uint) (*models.UserSubscription, error)
	GetByProviderID(providerSubID string) (*models.UserSubscription, error)
	List(offset, limit int) ([]models.UserSubscription, error)
	ListByStatus(status string, offset, limit int) ([]models.UserSubscription, error)
	Count() (int64, error)
	UpdateStatus(id uint, status string) error
	BillingHistory(subscriptionID uint) ([]models.SubscriptionOrder, error)
}

// WebhookLogRepository exposes the event store for operator reconciliation.
type WebhookLogRepository interface {
	Recent(limit int) ([]models.WebhookLog, error)
	Unprocessed(limit int) ([]models.WebhookLog, error)
	GetByID(id uint) (*models.WebhookLog, error)
}
