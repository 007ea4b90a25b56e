package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BrewBoxLabs/BrewBox/app/models"
)

const (
	ProviderDTDC       = "dtdc"
	ProviderNimbuspost = "nimbuspost"
)

type ShipmentRequest struct {
	OrderID     uint
	Reference   string
	Address     models.ShippingAddress
	WeightGrams int
	CODAmount   float64
}

type Shipment struct {
	CourierName    string
	TrackingNumber string
}

type TrackingEvent struct {
	Status    string
	Location  string
	Timestamp time.Time
}

// Provider is a courier backend. Field mapping is deliberately thin; these
// clients exist so orders can be shipped and tracked, not to model every
// courier API capability.
type Provider interface {
	Name() string
	CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error)
	TrackShipment(ctx context.Context, trackingNumber string) ([]TrackingEvent, error)
	CancelShipment(ctx context.Context, trackingNumber string) error
	FetchLabel(ctx context.Context, trackingNumber string) ([]byte, error)
}

// ProviderByName resolves a configured courier client by name.
func ProviderByName(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderDTDC:
		return NewDTDCClientFromEnv(), nil
	case ProviderNimbuspost:
		return NewNimbuspostClientFromEnv(), nil
	default:
		return nil, fmt.Errorf("unknown courier provider %q", name)
	}
}
