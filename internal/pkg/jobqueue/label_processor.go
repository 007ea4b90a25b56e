package jobqueue

import (
	"context"
	"fmt"

	"github.com/BrewBoxLabs/BrewBox/app/models"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/database"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/labelstore"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/shipping"
)

// processShipmentLabelJob fetches the courier label for a shipped order and
// archives it in the label store. Runs off the request path because courier
// label endpoints are slow and flaky.
func (q *Queue) processShipmentLabelJob(ctx context.Context, job *Job) error {
	payload, err := ShipmentLabelJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid shipment label payload: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database unavailable")
	}

	var order models.Order
	if err := db.First(&order, payload.OrderID).Error; err != nil {
		return fmt.Errorf("load order %d: %w", payload.OrderID, err)
	}
	if order.TrackingNumber == "" || order.CourierName == "" {
		return fmt.Errorf("order %d has no shipment to fetch a label for", order.ID)
	}

	provider, err := shipping.ProviderByName(order.CourierName)
	if err != nil {
		return err
	}

	label, err := provider.FetchLabel(ctx, order.TrackingNumber)
	if err != nil {
		return fmt.Errorf("fetch label for order %d: %w", order.ID, err)
	}

	store, err := labelstore.NewClient(labelstore.LoadConfigFromEnv())
	if err != nil {
		return err
	}
	key, err := store.StoreLabel(ctx, order.ID, order.TrackingNumber, label)
	if err != nil {
		return err
	}

	return db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("label_object_key", key).Error
}
