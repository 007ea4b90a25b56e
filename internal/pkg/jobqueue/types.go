package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeNotification  JobType = "notification"
	JobTypeShipmentLabel JobType = "shipment_label"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// NotificationJobPayload carries a queued customer notification.
type NotificationJobPayload struct {
	UserID         uint    `json:"user_id"`
	Kind           string  `json:"kind"` // models.Notification* constants
	OrderID        uint    `json:"order_id,omitempty"`
	SubscriptionID uint    `json:"subscription_id,omitempty"`
	TotalAmount    float64 `json:"total_amount,omitempty"`
}

// ToMap converts the payload to a map for storage
func (p NotificationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         p.UserID,
		"kind":            p.Kind,
		"order_id":        p.OrderID,
		"subscription_id": p.SubscriptionID,
		"total_amount":    p.TotalAmount,
	}
}

// NotificationJobPayloadFromMap creates a payload from a stored map
func NotificationJobPayloadFromMap(data map[string]interface{}) (*NotificationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var p NotificationJobPayload
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ShipmentLabelJobPayload asks the worker to fetch a courier label for an
// order and archive it.
type ShipmentLabelJobPayload struct {
	OrderID uint `json:"order_id"`
}

// ToMap converts the payload to a map for storage
func (p ShipmentLabelJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"order_id": p.OrderID,
	}
}

// ShipmentLabelJobPayloadFromMap creates a payload from a stored map
func ShipmentLabelJobPayloadFromMap(data map[string]interface{}) (*ShipmentLabelJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var p ShipmentLabelJobPayload
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkAsProcessing sets the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted sets the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed sets the job status to failed with an error message
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = errorMsg
	j.RetryCount++
	j.UpdatedAt = time.Now()
}

// MarkAsRetrying sets the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// IsRetryable reports whether the job has retries left
func (j *Job) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}
