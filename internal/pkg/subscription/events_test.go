package subscription

import (
	"testing"
)

func TestEventKindKnown(t *testing.T) {
	known := []EventKind{
		EventSubscriptionAuthenticated,
		EventSubscriptionActivated,
		EventSubscriptionPending,
		EventSubscriptionCharged,
		EventInvoicePaid,
		EventSubscriptionPaused,
		EventSubscriptionResumed,
		EventSubscriptionCancelled,
		EventSubscriptionCompleted,
		EventPaymentFailed,
	}
	for _, k := range known {
		if !k.Known() {
			t.Fatalf("expected %q to be known", k)
		}
	}

	unknown := []EventKind{"payment.captured", "order.paid", "refund.created", ""}
	for _, k := range unknown {
		if k.Known() {
			t.Fatalf("expected %q to be unknown", k)
		}
	}
}

func TestDecodeEvent(t *testing.T) {
	raw := []byte(`{
		"event": "subscription.charged",
		"payload": {
			"subscription": {
				"entity": {
					"id": "sub_123",
					"status": "active",
					"plan_id": "plan_9",
					"charge_at": 1700000000,
					"notes": {"user_id": "42", "quantity": 2}
				}
			},
			"payment": {
				"entity": {"id": "pay_abc", "amount": 50000, "status": "captured"}
			}
		}
	}`)

	ev, err := DecodeEvent(raw)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if ev.Kind != EventSubscriptionCharged {
		t.Fatalf("kind = %q, want %q", ev.Kind, EventSubscriptionCharged)
	}
	if ev.Subscription == nil || ev.Subscription.ID != "sub_123" {
		t.Fatalf("subscription entity not decoded: %+v", ev.Subscription)
	}
	if ev.Payment == nil || ev.Payment.Amount != 50000 {
		t.Fatalf("payment entity not decoded: %+v", ev.Payment)
	}
	if ev.Invoice != nil {
		t.Fatalf("expected no invoice entity, got %+v", ev.Invoice)
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	if _, err := DecodeEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
	if _, err := DecodeEvent([]byte(`{"payload":{}}`)); err == nil {
		t.Fatalf("expected error for missing event type")
	}
}

func TestSubscriptionEntityNote(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		key   string
		want  string
	}{
		{name: "string value", notes: `{"email":"a@b.c"}`, key: "email", want: "a@b.c"},
		{name: "numeric value", notes: `{"user_id": 42}`, key: "user_id", want: "42"},
		{name: "missing key", notes: `{"email":"a@b.c"}`, key: "user_id", want: ""},
		{name: "empty array notes", notes: `[]`, key: "email", want: ""},
		{name: "absent notes", notes: ``, key: "email", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &SubscriptionEntity{}
			if tt.notes != "" {
				e.Notes = []byte(tt.notes)
			}
			if got := e.Note(tt.key); got != tt.want {
				t.Fatalf("Note(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestEventCorrelationID(t *testing.T) {
	subEvent := &Event{Subscription: &SubscriptionEntity{ID: "sub_1"}, Payment: &PaymentEntity{ID: "pay_1"}}
	if got := subEvent.CorrelationID(); got != "sub_1" {
		t.Fatalf("correlation = %q, want subscription id", got)
	}

	invEvent := &Event{Invoice: &InvoiceEntity{SubscriptionID: "sub_2", ID: "inv_1"}, Payment: &PaymentEntity{ID: "pay_1"}}
	if got := invEvent.CorrelationID(); got != "sub_2" {
		t.Fatalf("correlation = %q, want invoice subscription id", got)
	}

	payEvent := &Event{Payment: &PaymentEntity{ID: "pay_1"}}
	if got := payEvent.CorrelationID(); got != "pay_1" {
		t.Fatalf("correlation = %q, want payment id", got)
	}

	empty := &Event{}
	if got := empty.CorrelationID(); got != "" {
		t.Fatalf("correlation = %q, want empty", got)
	}
}

func TestEventChargeAmount(t *testing.T) {
	ev := &Event{Payment: &PaymentEntity{Amount: 50000}}
	if got := ev.ChargeAmount(); got != 500 {
		t.Fatalf("ChargeAmount = %v, want 500", got)
	}

	ev = &Event{Invoice: &InvoiceEntity{AmountPaid: 123456}}
	if got := ev.ChargeAmount(); got != 1234.56 {
		t.Fatalf("ChargeAmount = %v, want 1234.56", got)
	}

	// Payment wins over invoice when both carry an amount.
	ev = &Event{Payment: &PaymentEntity{Amount: 50000}, Invoice: &InvoiceEntity{AmountPaid: 99900}}
	if got := ev.ChargeAmount(); got != 500 {
		t.Fatalf("ChargeAmount = %v, want payment amount 500", got)
	}

	if got := (&Event{}).ChargeAmount(); got != 0 {
		t.Fatalf("ChargeAmount = %v, want 0", got)
	}
}

func TestEventPaymentRef(t *testing.T) {
	ev := &Event{Payment: &PaymentEntity{ID: "pay_1"}, Invoice: &InvoiceEntity{ID: "inv_1"}}
	if got := ev.PaymentRef(); got != "pay_1" {
		t.Fatalf("PaymentRef = %q, want pay_1", got)
	}

	ev = &Event{Invoice: &InvoiceEntity{ID: "inv_1"}}
	if got := ev.PaymentRef(); got != "inv_1" {
		t.Fatalf("PaymentRef = %q, want inv_1", got)
	}

	if got := (&Event{}).PaymentRef(); got != "" {
		t.Fatalf("PaymentRef = %q, want empty", got)
	}
}

func TestPeekEnvelope(t *testing.T) {
	eventType, correlation := peekEnvelope([]byte(`{
		"event": "subscription.activated",
		"payload": {"subscription": {"entity": {"id": "sub_xyz"}}}
	}`))
	if eventType != "subscription.activated" || correlation != "sub_xyz" {
		t.Fatalf("peekEnvelope = (%q, %q)", eventType, correlation)
	}

	// A body the full decoder rejects still yields the event type when present.
	eventType, correlation = peekEnvelope([]byte(`{"event": ""}`))
	if eventType != "" || correlation != "" {
		t.Fatalf("peekEnvelope on empty event = (%q, %q)", eventType, correlation)
	}
}
