package subscription

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventKind is the closed set of provider webhook event types this service
// reacts to. Anything outside the set is logged and acknowledged unchanged.
type EventKind string

const (
	EventSubscriptionAuthenticated EventKind = "subscription.authenticated"
	EventSubscriptionActivated     EventKind = "subscription.activated"
	EventSubscriptionPending       EventKind = "subscription.pending"
	EventSubscriptionCharged       EventKind = "subscription.charged"
	EventInvoicePaid               EventKind = "invoice.paid"
	EventSubscriptionPaused        EventKind = "subscription.paused"
	EventSubscriptionResumed       EventKind = "subscription.resumed"
	EventSubscriptionCancelled     EventKind = "subscription.cancelled"
	EventSubscriptionCompleted     EventKind = "subscription.completed"
	EventPaymentFailed             EventKind = "subscription.payment_failed"
)

// Known reports whether the kind belongs to the handled set.
func (k EventKind) Known() bool {
	switch k {
	case EventSubscriptionAuthenticated, EventSubscriptionActivated,
		EventSubscriptionPending, EventSubscriptionCharged, EventInvoicePaid,
		EventSubscriptionPaused, EventSubscriptionResumed,
		EventSubscriptionCancelled, EventSubscriptionCompleted,
		EventPaymentFailed:
		return true
	default:
		return false
	}
}

// SubscriptionEntity carries the subscription fields this service reads from
// the webhook payload. Notes is kept raw because the provider sends either an
// object or an empty array depending on how the subscription was created.
type SubscriptionEntity struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	PlanID     string          `json:"plan_id"`
	CustomerID string          `json:"customer_id"`
	CreatedAt  int64           `json:"created_at"`
	ChargeAt   int64           `json:"charge_at"`
	PaidCount  int             `json:"paid_count"`
	TotalCount int             `json:"total_count"`
	Notes      json.RawMessage `json:"notes"`
}

// Note returns a string value from the notes object, or "" when notes is
// absent, not an object, or the key is missing. Numeric note values are
// rendered in their JSON form.
func (e *SubscriptionEntity) Note(key string) string {
	if len(e.Notes) == 0 {
		return ""
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(e.Notes, &m); err != nil {
		return ""
	}
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// PaymentEntity amounts are in paise.
type PaymentEntity struct {
	ID      string `json:"id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
}

type InvoiceEntity struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	AmountPaid     int64  `json:"amount_paid"`
	BillingCycle   int    `json:"billing_cycle"`
}

// Event is the decoded webhook envelope: one kind plus only the entities the
// payload actually carried.
type Event struct {
	Kind         EventKind
	Subscription *SubscriptionEntity
	Payment      *PaymentEntity
	Invoice      *InvoiceEntity
}

type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription *struct {
			Entity SubscriptionEntity `json:"entity"`
		} `json:"subscription"`
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Invoice *struct {
			Entity InvoiceEntity `json:"entity"`
		} `json:"invoice"`
	} `json:"payload"`
}

// DecodeEvent parses a raw webhook body into an Event. The kind is returned
// even for unknown event types so the dispatcher can log and acknowledge
// them without touching any state.
func DecodeEvent(raw []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed webhook envelope: %w", err)
	}
	if strings.TrimSpace(env.Event) == "" {
		return nil, errors.New("webhook envelope missing event type")
	}

	ev := &Event{Kind: EventKind(env.Event)}
	if env.Payload.Subscription != nil {
		sub := env.Payload.Subscription.Entity
		ev.Subscription = &sub
	}
	if env.Payload.Payment != nil {
		pay := env.Payload.Payment.Entity
		ev.Payment = &pay
	}
	if env.Payload.Invoice != nil {
		inv := env.Payload.Invoice.Entity
		ev.Invoice = &inv
	}
	return ev, nil
}

// ProviderSubscriptionID returns the subscription id the event correlates
// to: the subscription entity first, then the invoice's subscription_id.
func (e *Event) ProviderSubscriptionID() string {
	if e.Subscription != nil && strings.TrimSpace(e.Subscription.ID) != "" {
		return strings.TrimSpace(e.Subscription.ID)
	}
	if e.Invoice != nil && strings.TrimSpace(e.Invoice.SubscriptionID) != "" {
		return strings.TrimSpace(e.Invoice.SubscriptionID)
	}
	return ""
}

// CorrelationID is what gets stamped on the webhook log row: subscription id,
// then invoice-linked subscription id, then payment id.
func (e *Event) CorrelationID() string {
	if id := e.ProviderSubscriptionID(); id != "" {
		return id
	}
	if e.Payment != nil {
		return strings.TrimSpace(e.Payment.ID)
	}
	return ""
}

// ChargeAmount returns the charged amount in rupees, preferring the payment
// entity over the invoice entity. Provider amounts are paise.
func (e *Event) ChargeAmount() float64 {
	if e.Payment != nil && e.Payment.Amount > 0 {
		return float64(e.Payment.Amount) / 100
	}
	if e.Invoice != nil && e.Invoice.AmountPaid > 0 {
		return float64(e.Invoice.AmountPaid) / 100
	}
	return 0
}

// PaymentRef is the idempotency key for order materialization: the payment
// id when present, else the invoice id.
func (e *Event) PaymentRef() string {
	if e.Payment != nil && strings.TrimSpace(e.Payment.ID) != "" {
		return strings.TrimSpace(e.Payment.ID)
	}
	if e.Invoice != nil {
		return strings.TrimSpace(e.Invoice.ID)
	}
	return ""
}

// peekEnvelope pulls the event type and correlation id out of a body without
// requiring the whole envelope to decode, so the log row can be written even
// for payloads the full decoder rejects.
func peekEnvelope(raw []byte) (eventType, correlationID string) {
	ev, err := DecodeEvent(raw)
	if err != nil {
		var partial struct {
			Event string `json:"event"`
		}
		_ = json.Unmarshal(raw, &partial)
		return partial.Event, ""
	}
	return string(ev.Kind), ev.CorrelationID()
}
