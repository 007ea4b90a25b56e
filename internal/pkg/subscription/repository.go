package subscription

import (
	"time"

	"github.com/BrewBoxLabs/BrewBox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations the reconciliation service needs.
type Repository interface {
	CreateWebhookLog(row *models.WebhookLog) error
	MarkWebhookProcessed(id uint, processingError string) error

	SubscriptionByProviderID(providerSubID string) (*models.UserSubscription, error)
	PendingByProviderID(providerSubID string) (*models.PendingSubscription, error)
	PromotePending(pending *models.PendingSubscription, sub *models.UserSubscription) error
	CreateSubscription(sub *models.UserSubscription) error
	UpdateSubscriptionStatus(id uint, status string) error
	UpdateLastPaymentStatus(id uint, status string) error

	VariantByID(id uint) (*models.ProductVariant, error)
	VariantByPlanID(planID string) (*models.ProductVariant, error)
	UserByEmail(email string) (*models.User, error)

	MaterializeChargeOrder(sub *models.UserSubscription, amount, unitPrice float64, paymentRef string, billingDate time.Time) (*models.Order, bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookLog(row *models.WebhookLog) error {
	return r.db.Create(row).Error
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	updates := map[string]interface{}{
		"processing_error": processingError,
	}
	if processingError == "" {
		now := time.Now()
		updates["processed"] = true
		updates["processed_at"] = &now
	}
	return r.db.Model(&models.WebhookLog{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) SubscriptionByProviderID(providerSubID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Where("razorpay_subscription_id = ?", providerSubID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) PendingByProviderID(providerSubID string) (*models.PendingSubscription, error) {
	var pending models.PendingSubscription
	err := r.db.Where("razorpay_subscription_id = ?", providerSubID).First(&pending).Error
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// PromotePending creates the ledger row and consumes the pending record in
// one transaction, so a crash between the two cannot leave both behind.
func (r *gormRepository) PromotePending(pending *models.PendingSubscription, sub *models.UserSubscription) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PendingSubscription{}, pending.ID).Error
	})
}

func (r *gormRepository) CreateSubscription(sub *models.UserSubscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) UpdateSubscriptionStatus(id uint, status string) error {
	return r.db.Model(&models.UserSubscription{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *gormRepository) UpdateLastPaymentStatus(id uint, status string) error {
	return r.db.Model(&models.UserSubscription{}).Where("id = ?", id).
		Update("last_payment_status", status).Error
}

func (r *gormRepository) VariantByID(id uint) (*models.ProductVariant, error) {
	var v models.ProductVariant
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) VariantByPlanID(planID string) (*models.ProductVariant, error) {
	var v models.ProductVariant
	if err := r.db.Where("razorpay_plan_id = ?", planID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) UserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// MaterializeChargeOrder creates the order, its item and the billing cycle
// record in a single transaction, then advances the subscription counters
// atomically. The conditional insert on the unique
// (subscription_id, razorpay_payment_id) index is the idempotency guard: a
// replayed or concurrently delivered charge sees zero rows affected, the
// transaction rolls back and no second order survives.
func (r *gormRepository) MaterializeChargeOrder(sub *models.UserSubscription, amount, unitPrice float64, paymentRef string, billingDate time.Time) (*models.Order, bool, error) {
	order := &models.Order{
		UserID:            sub.UserID,
		Status:            models.OrderStatusConfirmed,
		PaymentStatus:     models.PaymentStatusPaid,
		Subtotal:          amount,
		TotalAmount:       amount,
		ShippingAddress:   sub.ShippingAddress,
		RazorpayPaymentID: paymentRef,
		Source:            models.OrderSourceSubscription,
	}

	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		item := &models.OrderItem{
			OrderID:    order.ID,
			ProductID:  sub.ProductID,
			VariantID:  sub.VariantID,
			Quantity:   sub.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice * float64(sub.Quantity),
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}

		cycle := &models.SubscriptionOrder{
			SubscriptionID:    sub.ID,
			OrderID:           order.ID,
			BillingCycle:      sub.CompletedDeliveries + 1,
			RazorpayPaymentID: paymentRef,
			BillingDate:       billingDate,
			Status:            models.PaymentStatusPaid,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "subscription_id"},
				{Name: "razorpay_payment_id"},
			},
			DoNothing: true,
		}).Create(cycle)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Charge already materialized by an earlier delivery.
			return gorm.ErrDuplicatedKey
		}

		if err := tx.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).
			Updates(map[string]interface{}{
				"completed_deliveries": gorm.Expr("completed_deliveries + 1"),
				"next_delivery_date":   gorm.Expr("DATE_ADD(COALESCE(next_delivery_date, NOW()), INTERVAL 30 DAY)"),
				"next_billing_date":    gorm.Expr("DATE_ADD(COALESCE(next_billing_date, NOW()), INTERVAL 30 DAY)"),
				"last_payment_status":  models.LastPaymentSuccess,
			}).Error; err != nil {
			return err
		}

		created = true
		return nil
	})

	if err == gorm.ErrDuplicatedKey {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, created, nil
}
