package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	User              User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status            string          `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	PaymentStatus     string          `gorm:"type:varchar(32);not null;default:'pending';index" json:"payment_status"`
	Subtotal          float64         `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	TotalAmount       float64         `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	ShippingAddress   ShippingAddress `gorm:"type:json" json:"shipping_address"`
	RazorpayPaymentID string          `gorm:"type:varchar(100);default:'';index" json:"razorpay_payment_id"`
	Source            string          `gorm:"type:varchar(32);not null;default:'checkout'" json:"source"`
	CourierName       string          `gorm:"type:varchar(50);default:''" json:"courier_name"`
	TrackingNumber    string          `gorm:"type:varchar(100);default:'';index" json:"tracking_number"`
	LabelObjectKey    string          `gorm:"type:varchar(255);default:''" json:"label_object_key"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

const (
	OrderSourceCheckout     = "checkout"
	OrderSourceSubscription = "subscription"
)

type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	VariantID  uint      `gorm:"not null" json:"variant_id"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice  float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice float64   `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
