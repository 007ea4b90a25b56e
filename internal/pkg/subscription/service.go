package subscription

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BrewBoxLabs/BrewBox/app/models"
	"github.com/BrewBoxLabs/BrewBox/internal/pkg/razorpay"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// deliveryInterval is the fixed advance applied to next_delivery_date and
// next_billing_date on every successful charge.
const deliveryIntervalDays = 30

// ProviderClient is the slice of the payment provider API the reconciler
// uses: resolving a customer id to an email for the synthesize fallback.
type ProviderClient interface {
	FetchCustomer(ctx context.Context, customerID string) (*razorpay.Customer, error)
}

// Notifier is the best-effort side channel. Implementations must never block
// reconciliation; errors are logged and swallowed by the caller.
type Notifier interface {
	NotifyOrderConfirmed(userID, orderID uint, total float64) error
	NotifyPaymentFailed(userID, subscriptionID uint) error
}

// Outcome is the explicit result of handling one webhook delivery. The
// dispatcher converts every variant into an HTTP 200 acknowledgment; only
// the log/alert treatment differs. This keeps the always-acknowledge policy
// a typed boundary instead of a recover-all.
type Outcome struct {
	Applied bool
	Skipped string
	Err     error
}

func applied() Outcome              { return Outcome{Applied: true} }
func skipped(reason string) Outcome { return Outcome{Skipped: reason} }
func failed(err error) Outcome      { return Outcome{Err: err} }

// OK reports whether the delivery was handled without an internal error.
func (o Outcome) OK() bool { return o.Err == nil }

// Service drives the subscription/order state machine from webhook events.
type Service struct {
	repo     Repository
	provider ProviderClient
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, provider ProviderClient, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		notifier: notifier,
		now:      time.Now,
	}
}

// NewServiceFromDB creates a service from a GORM DB handle with the default
// provider client.
func NewServiceFromDB(db *gorm.DB, notifier Notifier) *Service {
	return NewService(NewRepository(db), razorpay.NewClientFromEnv(), notifier)
}

// HandleDelivery records the delivery in the webhook log, decodes it and
// dispatches to the per-event handler. The log row is written before any
// processing so every inbound call is durable even when handling fails.
func (s *Service) HandleDelivery(ctx context.Context, raw []byte) Outcome {
	eventType, correlationID := peekEnvelope(raw)
	row := &models.WebhookLog{
		EventType:     eventType,
		CorrelationID: correlationID,
		RawPayload:    string(raw),
	}
	if err := s.repo.CreateWebhookLog(row); err != nil {
		// Nothing durable exists for this delivery; still acknowledged, so
		// this must be loud enough for alerting to pick up.
		log.Errorf("[Webhook] failed to persist webhook log (event=%s): %v", eventType, err)
		return failed(fmt.Errorf("persist webhook log: %w", err))
	}

	outcome := s.process(ctx, raw)

	switch {
	case outcome.Err != nil:
		log.Errorf("[Webhook] event=%s correlation=%s failed: %v", eventType, correlationID, outcome.Err)
		if err := s.repo.MarkWebhookProcessed(row.ID, outcome.Err.Error()); err != nil {
			log.Errorf("[Webhook] failed to record processing error for log %d: %v", row.ID, err)
		}
	case outcome.Skipped != "":
		log.Warnf("[Webhook] event=%s correlation=%s skipped: %s", eventType, correlationID, outcome.Skipped)
		if err := s.repo.MarkWebhookProcessed(row.ID, ""); err != nil {
			log.Errorf("[Webhook] failed to mark log %d processed: %v", row.ID, err)
		}
	default:
		if err := s.repo.MarkWebhookProcessed(row.ID, ""); err != nil {
			log.Errorf("[Webhook] failed to mark log %d processed: %v", row.ID, err)
		}
	}
	return outcome
}

func (s *Service) process(ctx context.Context, raw []byte) Outcome {
	ev, err := DecodeEvent(raw)
	if err != nil {
		return failed(err)
	}
	if !ev.Kind.Known() {
		return skipped(fmt.Sprintf("unhandled event type %q", ev.Kind))
	}

	switch ev.Kind {
	case EventSubscriptionAuthenticated, EventSubscriptionActivated:
		return s.handleActivation(ctx, ev)
	case EventSubscriptionPending:
		return s.setLastPayment(ev, models.LastPaymentPending)
	case EventSubscriptionCharged, EventInvoicePaid:
		return s.handleCharge(ev)
	case EventSubscriptionPaused:
		return s.setStatus(ev, models.SubscriptionStatusPaused)
	case EventSubscriptionResumed:
		return s.setStatus(ev, models.SubscriptionStatusActive)
	case EventSubscriptionCancelled, EventSubscriptionCompleted:
		// completed is a terminal state and maps onto cancelled.
		return s.setStatus(ev, models.SubscriptionStatusCancelled)
	case EventPaymentFailed:
		return s.handlePaymentFailed(ev)
	}
	return skipped(fmt.Sprintf("unhandled event type %q", ev.Kind))
}

// handleActivation resolves or creates the ledger row for an authenticated
// or activated subscription and ensures it is active. Both events share the
// promotion/synthesis path because the provider does not guarantee which of
// the two arrives first, or that the checkout's pending write is visible yet.
func (s *Service) handleActivation(ctx context.Context, ev *Event) Outcome {
	providerSubID := ev.ProviderSubscriptionID()
	if providerSubID == "" {
		return failed(errors.New("activation event missing subscription id"))
	}

	sub, err := s.repo.SubscriptionByProviderID(providerSubID)
	if err == nil {
		if sub.Status == models.SubscriptionStatusActive {
			return applied()
		}
		if err := s.repo.UpdateSubscriptionStatus(sub.ID, models.SubscriptionStatusActive); err != nil {
			return failed(err)
		}
		return applied()
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return failed(err)
	}

	return s.resolveOrCreateSubscription(ctx, ev, providerSubID)
}

// resolveOrCreateSubscription implements the promotion-or-synthesize duality:
// promote a checkout-time pending record when one exists, otherwise rebuild
// the subscription from the event itself.
func (s *Service) resolveOrCreateSubscription(ctx context.Context, ev *Event, providerSubID string) Outcome {
	pending, err := s.repo.PendingByProviderID(providerSubID)
	if err == nil {
		return s.promoteFromPending(ev, pending)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return failed(err)
	}
	return s.synthesizeFromNotes(ctx, ev, providerSubID)
}

func (s *Service) promoteFromPending(ev *Event, pending *models.PendingSubscription) Outcome {
	now := s.now()
	sub := &models.UserSubscription{
		UserID:                 pending.UserID,
		RazorpaySubscriptionID: pending.RazorpaySubscriptionID,
		ProductID:              pending.ProductID,
		VariantID:              pending.VariantID,
		VariantAmount:          pending.VariantAmount,
		Quantity:               pending.Quantity,
		Status:                 models.SubscriptionStatusActive,
		PreferredDeliveryDay:   pending.PreferredDeliveryDay,
		TotalDeliveries:        pending.TotalDeliveries,
		LastPaymentStatus:      models.LastPaymentPending,
		ShippingAddress:        pending.ShippingAddress,
	}
	if ev.Subscription != nil {
		sub.PlanID = ev.Subscription.PlanID
	}
	next := models.NextDeliveryOnDay(now, pending.PreferredDeliveryDay)
	sub.NextDeliveryDate = &next
	if ev.Subscription != nil && ev.Subscription.ChargeAt > 0 {
		billing := time.Unix(ev.Subscription.ChargeAt, 0)
		sub.NextBillingDate = &billing
	}

	if err := s.repo.PromotePending(pending, sub); err != nil {
		return failed(fmt.Errorf("promote pending subscription %d: %w", pending.ID, err))
	}
	log.Infof("[Subscription] promoted pending %d to subscription %d (provider=%s)",
		pending.ID, sub.ID, sub.RazorpaySubscriptionID)
	return applied()
}

// synthesizeFromNotes rebuilds a subscription when no pending record exists:
// either the checkout write lost the race against the provider's webhook, or
// the subscription originated on the provider side. Identity comes from the
// event notes, falling back to a variant whose stored plan id matches and a
// customer email lookup against the provider. When identity cannot be
// resolved nothing is written; a partial ledger row is worse than none.
func (s *Service) synthesizeFromNotes(ctx context.Context, ev *Event, providerSubID string) Outcome {
	if ev.Subscription == nil {
		return skipped("no subscription entity to synthesize from; needs manual reconciliation")
	}
	entity := ev.Subscription

	variant, err := s.resolveVariant(entity)
	if err != nil {
		return skipped(fmt.Sprintf("cannot resolve variant for plan %q; needs manual reconciliation", entity.PlanID))
	}

	userID, err := s.resolveUser(ctx, entity)
	if err != nil {
		return skipped(fmt.Sprintf("cannot resolve user for subscription %s; needs manual reconciliation", providerSubID))
	}

	quantity := 1
	if q, qerr := strconv.Atoi(entity.Note("quantity")); qerr == nil && q > 0 {
		quantity = q
	}
	deliveryDay := 1
	if d, derr := strconv.Atoi(entity.Note("preferred_delivery_day")); derr == nil && d >= 1 && d <= 31 {
		deliveryDay = d
	}

	now := s.now()
	next := models.NextDeliveryOnDay(now, deliveryDay)
	sub := &models.UserSubscription{
		UserID:                 userID,
		PlanID:                 entity.PlanID,
		RazorpaySubscriptionID: providerSubID,
		ProductID:              variant.ProductID,
		VariantID:              variant.ID,
		VariantAmount:          variant.Price,
		Quantity:               quantity,
		Status:                 models.SubscriptionStatusActive,
		PreferredDeliveryDay:   deliveryDay,
		NextDeliveryDate:       &next,
		TotalDeliveries:        entity.TotalCount,
		LastPaymentStatus:      models.LastPaymentPending,
	}
	if entity.ChargeAt > 0 {
		billing := time.Unix(entity.ChargeAt, 0)
		sub.NextBillingDate = &billing
	}
	if addr := addressFromNotes(entity); addr != nil {
		sub.ShippingAddress = *addr
	}

	if err := s.repo.CreateSubscription(sub); err != nil {
		return failed(fmt.Errorf("synthesize subscription %s: %w", providerSubID, err))
	}
	log.Infof("[Subscription] synthesized subscription %d from webhook (provider=%s)", sub.ID, providerSubID)
	return applied()
}

func (s *Service) resolveVariant(entity *SubscriptionEntity) (*models.ProductVariant, error) {
	if idStr := entity.Note("variant_id"); idStr != "" {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			if v, verr := s.repo.VariantByID(uint(id)); verr == nil {
				return v, nil
			}
		}
	}
	if strings.TrimSpace(entity.PlanID) == "" {
		return nil, errors.New("no plan id on subscription entity")
	}
	return s.repo.VariantByPlanID(entity.PlanID)
}

func (s *Service) resolveUser(ctx context.Context, entity *SubscriptionEntity) (uint, error) {
	if idStr := entity.Note("user_id"); idStr != "" {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil && id > 0 {
			return uint(id), nil
		}
	}

	email := strings.TrimSpace(entity.Note("email"))
	if email == "" && s.provider != nil && strings.TrimSpace(entity.CustomerID) != "" {
		customer, err := s.provider.FetchCustomer(ctx, entity.CustomerID)
		if err != nil {
			return 0, fmt.Errorf("provider customer lookup: %w", err)
		}
		email = strings.TrimSpace(customer.Email)
	}
	if email == "" {
		return 0, errors.New("no user id or email available")
	}

	user, err := s.repo.UserByEmail(email)
	if err != nil {
		return 0, fmt.Errorf("lookup user by email: %w", err)
	}
	return user.ID, nil
}

func addressFromNotes(entity *SubscriptionEntity) *models.ShippingAddress {
	addr := models.ShippingAddress{
		Name:       entity.Note("shipping_name"),
		Phone:      entity.Note("shipping_phone"),
		Line1:      entity.Note("shipping_line1"),
		Line2:      entity.Note("shipping_line2"),
		City:       entity.Note("shipping_city"),
		State:      entity.Note("shipping_state"),
		PostalCode: entity.Note("shipping_postal_code"),
		Country:    entity.Note("shipping_country"),
	}
	if addr.IsEmpty() {
		return nil
	}
	return &addr
}

// setStatus applies an idempotent status-only transition.
func (s *Service) setStatus(ev *Event, status string) Outcome {
	sub, outcome := s.requireSubscription(ev)
	if sub == nil {
		return outcome
	}
	if sub.Status == status {
		return applied()
	}
	if err := s.repo.UpdateSubscriptionStatus(sub.ID, status); err != nil {
		return failed(err)
	}
	return applied()
}

func (s *Service) setLastPayment(ev *Event, status string) Outcome {
	sub, outcome := s.requireSubscription(ev)
	if sub == nil {
		return outcome
	}
	if err := s.repo.UpdateLastPaymentStatus(sub.ID, status); err != nil {
		return failed(err)
	}
	return applied()
}

func (s *Service) handlePaymentFailed(ev *Event) Outcome {
	sub, outcome := s.requireSubscription(ev)
	if sub == nil {
		return outcome
	}
	if err := s.repo.UpdateLastPaymentStatus(sub.ID, models.LastPaymentFailed); err != nil {
		return failed(err)
	}
	s.notify(func(n Notifier) error { return n.NotifyPaymentFailed(sub.UserID, sub.ID) })
	return applied()
}

// handleCharge materializes exactly one order for a successful charge. The
// guards (subscription present, shipping address non-empty) are operator
// conditions, not errors: the event is acknowledged and left for manual
// reconciliation so the provider never retry-storms over them.
func (s *Service) handleCharge(ev *Event) Outcome {
	providerSubID := ev.ProviderSubscriptionID()
	if providerSubID == "" {
		return skipped("charge event carries no subscription id; needs manual reconciliation")
	}

	sub, err := s.repo.SubscriptionByProviderID(providerSubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return skipped(fmt.Sprintf("no subscription for %s; needs manual reconciliation", providerSubID))
		}
		return failed(err)
	}
	if sub.ShippingAddress.IsEmpty() {
		return skipped(fmt.Sprintf("subscription %d has no shipping address; needs manual reconciliation", sub.ID))
	}

	paymentRef := ev.PaymentRef()
	if paymentRef == "" {
		return skipped("charge event carries no payment or invoice id; needs manual reconciliation")
	}
	amount := ev.ChargeAmount()
	if amount <= 0 {
		return skipped("charge event carries no positive amount; needs manual reconciliation")
	}

	quantity := sub.Quantity
	if quantity < 1 {
		quantity = 1
	}
	unitPrice := amount / float64(quantity)
	if v, verr := s.repo.VariantByID(sub.VariantID); verr == nil && v.Price > 0 {
		unitPrice = v.Price
	}

	order, created, err := s.repo.MaterializeChargeOrder(sub, amount, unitPrice, paymentRef, s.now())
	if err != nil {
		return failed(fmt.Errorf("materialize order for payment %s: %w", paymentRef, err))
	}
	if !created {
		return skipped(fmt.Sprintf("payment %s already materialized for subscription %d", paymentRef, sub.ID))
	}

	log.Infof("[Subscription] materialized order %d for subscription %d (cycle %d, payment %s)",
		order.ID, sub.ID, sub.CompletedDeliveries+1, paymentRef)
	s.notify(func(n Notifier) error { return n.NotifyOrderConfirmed(sub.UserID, order.ID, amount) })
	return applied()
}

// requireSubscription resolves the event's subscription or returns the
// skip/fail outcome the caller should propagate. A nil subscription means
// outcome is final.
func (s *Service) requireSubscription(ev *Event) (*models.UserSubscription, Outcome) {
	providerSubID := ev.ProviderSubscriptionID()
	if providerSubID == "" {
		return nil, skipped("event carries no subscription id")
	}
	sub, err := s.repo.SubscriptionByProviderID(providerSubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, skipped(fmt.Sprintf("no subscription for %s; needs manual reconciliation", providerSubID))
		}
		return nil, failed(err)
	}
	return sub, Outcome{}
}

func (s *Service) notify(fn func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := fn(s.notifier); err != nil {
		log.Warnf("[Subscription] notification enqueue failed (ignored): %v", err)
	}
}
