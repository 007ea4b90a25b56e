package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPaused    = "paused"
	SubscriptionStatusCancelled = "cancelled"
)

const (
	LastPaymentSuccess = "success"
	LastPaymentPending = "pending"
	LastPaymentFailed  = "failed"
)

// UserSubscription is the durable subscription ledger row. The provider
// subscription id is the join key for all webhook correlation and must be
// unique.
type UserSubscription struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	UserID                 uint            `gorm:"not null;index" json:"user_id"`
	PlanID                 string          `gorm:"type:varchar(100);default:''" json:"plan_id"`
	RazorpaySubscriptionID string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"razorpay_subscription_id"`
	ProductID              uint            `gorm:"not null" json:"product_id"`
	VariantID              uint            `gorm:"not null" json:"variant_id"`
	VariantAmount          float64         `gorm:"type:decimal(10,2);not null;default:0" json:"variant_amount"`
	Quantity               int             `gorm:"not null;default:1" json:"quantity"`
	Status                 string          `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	PreferredDeliveryDay   int             `gorm:"not null;default:1" json:"preferred_delivery_day" validate:"min=1,max=31"`
	NextDeliveryDate       *time.Time      `gorm:"type:timestamp;default:null" json:"next_delivery_date,omitempty"`
	NextBillingDate        *time.Time      `gorm:"type:timestamp;default:null" json:"next_billing_date,omitempty"`
	TotalDeliveries        int             `gorm:"not null;default:0" json:"total_deliveries"`
	CompletedDeliveries    int             `gorm:"not null;default:0" json:"completed_deliveries"`
	LastPaymentStatus      string          `gorm:"type:varchar(32);not null;default:'pending'" json:"last_payment_status"`
	ShippingAddress        ShippingAddress `gorm:"type:json" json:"shipping_address"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the subscription reached a terminal state.
func (s *UserSubscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCancelled
}

// PendingSubscription is the provisional record written at checkout, before
// the provider confirms the mandate. It is consumed exactly once when the
// subscription is authenticated or activated and then deleted.
type PendingSubscription struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	UserID                 uint            `gorm:"not null;index" json:"user_id"`
	RazorpaySubscriptionID string          `gorm:"type:varchar(100);not null;index" json:"razorpay_subscription_id"`
	ProductID              uint            `gorm:"not null" json:"product_id"`
	VariantID              uint            `gorm:"not null" json:"variant_id"`
	VariantAmount          float64         `gorm:"type:decimal(10,2);not null;default:0" json:"variant_amount"`
	Quantity               int             `gorm:"not null;default:1" json:"quantity"`
	PreferredDeliveryDay   int             `gorm:"not null;default:1" json:"preferred_delivery_day" validate:"min=1,max=31"`
	TotalDeliveries        int             `gorm:"not null;default:12" json:"total_deliveries"`
	ShippingAddress        ShippingAddress `gorm:"type:json" json:"shipping_address"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// NextDeliveryOnDay returns the next occurrence of the preferred delivery
// day-of-month strictly after now. Days past the end of a short month clamp
// to that month's last day.
func NextDeliveryOnDay(now time.Time, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if day > 31 {
		day = 31
	}

	candidate := clampedDate(now.Year(), now.Month(), day, now.Location())
	if !candidate.After(now) {
		candidate = clampedDate(now.Year(), now.Month()+1, day, now.Location())
	}
	return candidate
}

func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := t.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
