package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Slug        string           `gorm:"type:varchar(200);uniqueIndex" json:"slug"`
	Description string           `gorm:"type:text" json:"description"`
	RoastLevel  string           `gorm:"type:varchar(50)" json:"roast_level"`
	Origin      string           `gorm:"type:varchar(100)" json:"origin"`
	IsActive    bool             `gorm:"default:true;index" json:"is_active"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// ProductVariant is a sellable unit (weight/grind combination) of a product.
// RazorpayPlanID links a variant to the provider's recurring plan so webhook
// payloads can be resolved back to a variant when no pending record exists.
type ProductVariant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductID      uint      `gorm:"not null;index" json:"product_id"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	WeightGrams    int       `gorm:"not null;default:250" json:"weight_grams"`
	Grind          string    `gorm:"type:varchar(50);default:'whole_bean'" json:"grind"`
	Price          float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity  int       `gorm:"default:0" json:"stock_quantity"`
	RazorpayPlanID string    `gorm:"type:varchar(100);default:'';index" json:"razorpay_plan_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
