package models

import "time"

// WebhookLog is the append-only record of every inbound webhook delivery.
// Rows are written before any event processing and never deleted; retried
// deliveries produce additional rows sharing the same correlation id.
type WebhookLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	CorrelationID   string     `gorm:"type:varchar(191);default:'';index" json:"correlation_id"`
	RawPayload      string     `gorm:"type:longtext;not null" json:"raw_payload"`
	Processed       bool       `gorm:"default:false;index" json:"processed"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ReceivedAt      time.Time  `gorm:"autoCreateTime;index" json:"received_at"`
}
