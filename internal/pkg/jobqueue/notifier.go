package jobqueue

import (
	"github.com/BrewBoxLabs/BrewBox/app/models"
)

// QueueNotifier satisfies the reconciliation service's Notifier interface by
// enqueueing notification jobs. Delivery reliability is the queue's problem;
// the webhook path only pays for a Redis LPUSH.
type QueueNotifier struct {
	queue *Queue
}

// NewQueueNotifier creates a notifier backed by the given queue.
func NewQueueNotifier(queue *Queue) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) NotifyOrderConfirmed(userID, orderID uint, total float64) error {
	payload := NotificationJobPayload{
		UserID:      userID,
		Kind:        models.NotificationOrderConfirmed,
		OrderID:     orderID,
		TotalAmount: total,
	}
	_, err := n.queue.EnqueueJob(JobTypeNotification, payload.ToMap())
	return err
}

func (n *QueueNotifier) NotifyPaymentFailed(userID, subscriptionID uint) error {
	payload := NotificationJobPayload{
		UserID:         userID,
		Kind:           models.NotificationPaymentFailed,
		SubscriptionID: subscriptionID,
	}
	_, err := n.queue.EnqueueJob(JobTypeNotification, payload.ToMap())
	return err
}
