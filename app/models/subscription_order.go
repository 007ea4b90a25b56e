package models

import "time"

// SubscriptionOrder records one successful charge for a subscription and the
// order it materialized. The unique (subscription_id, razorpay_payment_id)
// index is what makes order materialization idempotent under concurrent or
// replayed charge deliveries.
type SubscriptionOrder struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID    uint      `gorm:"not null;index:ux_subscription_orders_sub_payment,unique,priority:1;index" json:"subscription_id"`
	OrderID           uint      `gorm:"not null;index" json:"order_id"`
	BillingCycle      int       `gorm:"not null" json:"billing_cycle"`
	RazorpayPaymentID string    `gorm:"type:varchar(100);not null;index:ux_subscription_orders_sub_payment,unique,priority:2" json:"razorpay_payment_id"`
	BillingDate       time.Time `gorm:"type:timestamp;not null" json:"billing_date"`
	Status            string    `gorm:"type:varchar(32);not null;default:'paid'" json:"status"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}
