package jobqueue

import (
	"context"
	"fmt"

	"github.com/BrewBoxLabs/BrewBox/app/models"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/database"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/mail"
)

// processNotificationJob delivers a queued customer notification by email and
// records the attempt. Delivery failures bubble up so the queue's retry
// policy applies; the webhook flow that enqueued the job is long gone.
func (q *Queue) processNotificationJob(ctx context.Context, job *Job) error {
	_ = ctx
	payload, err := NotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database unavailable")
	}

	var user models.User
	if err := db.First(&user, payload.UserID).Error; err != nil {
		return fmt.Errorf("load user %d: %w", payload.UserID, err)
	}

	var subject, body string
	var referenceID uint
	switch payload.Kind {
	case models.NotificationOrderConfirmed:
		subject, body = mail.OrderConfirmedBody(user.Name, payload.OrderID, payload.TotalAmount)
		referenceID = payload.OrderID
	case models.NotificationPaymentFailed:
		subject, body = mail.PaymentFailedBody(user.Name, payload.SubscriptionID)
		referenceID = payload.SubscriptionID
	default:
		return fmt.Errorf("unknown notification kind %q", payload.Kind)
	}

	if err := models.CreateNotification(db, user.ID, payload.Kind, subject, referenceID); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	return mail.SendMail(user.Email, subject, body)
}
