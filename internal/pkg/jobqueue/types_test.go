package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name:      "failed job with retries remaining",
			job:       &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3},
			retryable: true,
		},
		{
			name:      "failed job at retry limit",
			job:       &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3},
			retryable: false,
		},
		{
			name:      "fresh job",
			job:       &Job{Status: JobStatusPending, RetryCount: 0, MaxRetries: 3},
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_Transitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 3}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("smtp timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "smtp timeout", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
}

func TestNotificationJobPayloadRoundTrip(t *testing.T) {
	payload := NotificationJobPayload{
		UserID:      7,
		Kind:        "order_confirmed",
		OrderID:     12,
		TotalAmount: 499.5,
	}

	decoded, err := NotificationJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *decoded)
}

func TestShipmentLabelJobPayloadFromMap_JSONNumbers(t *testing.T) {
	// Payloads read back from Redis arrive with float64 numbers.
	decoded, err := ShipmentLabelJobPayloadFromMap(map[string]interface{}{"order_id": float64(42)})
	require.NoError(t, err)
	assert.Equal(t, uint(42), decoded.OrderID)
}
