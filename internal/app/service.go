/**
 * @description
 * This file contains the core application logic for processing classified
 * Bridge webhook events. The HTTP handler verifies and parses the payload,
 * then hands the typed event to this service, which updates the database and
 * publishes internal events to RabbitMQ for downstream services.
 *
 * @dependencies
 * - github.com/sendapp/bridge-service/internal/domain: Domain models.
 * - github.com/sendapp/bridge-service/internal/store: Repository interfaces.
 * - github.com/sendapp/bridge-service/internal/webhook: Event classifiers.
 *
 * @notes
 * - Events that carry nothing actionable (no status, missing ids) are logged
 *   and acknowledged rather than failed; returning an error makes Bridge
 *   retry the delivery, which only makes sense for transient failures.
 */
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/sendapp/bridge-service/internal/domain"
	"github.com/sendapp/bridge-service/internal/store"
	"github.com/sendapp/bridge-service/internal/webhook"
)

// BridgeEventsExchange is the RabbitMQ exchange internal events publish to.
const BridgeEventsExchange = "bridge_events"

// EventPublisher publishes internal events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error
}

// EventService applies classified webhook events to persistent state and
// fans them out as internal events.
type EventService struct {
	customers store.CustomerRepository
	deposits  store.DepositRepository
	accounts  store.VirtualAccountRepository
	publisher EventPublisher
}

// NewEventService creates a new EventService.
func NewEventService(customers store.CustomerRepository, deposits store.DepositRepository, accounts store.VirtualAccountRepository, publisher EventPublisher) *EventService {
	return &EventService{
		customers: customers,
		deposits:  deposits,
		accounts:  accounts,
		publisher: publisher,
	}
}

// ProcessKycEvent applies a kyc_link event: it updates the stored KYC/TOS
// status and publishes a KycStatusChangedEvent.
func (s *EventService) ProcessKycEvent(ctx context.Context, event *domain.WebhookEvent) error {
	kycStatus, hasKyc := webhook.ExtractKycStatus(event)
	tosStatus, hasTos := webhook.ExtractTosStatus(event)

	if !hasKyc && !hasTos {
		log.Printf("No status to update from KYC event %s", event.EventID)
		return nil
	}

	kycLinkID, ok := objectString(event.EventObject, "id")
	if !ok {
		kycLinkID = event.EventObjectID
	}

	update := store.CustomerStatusUpdate{KycLinkID: kycLinkID}
	if customerID, ok := objectString(event.EventObject, "customer_id"); ok {
		update.BridgeCustomerID = &customerID
	}
	if hasKyc {
		update.KycStatus = &kycStatus
	}
	if hasTos {
		update.TosStatus = &tosStatus
	}
	if reasons, ok := event.EventObject["rejection_reasons"].([]any); ok {
		update.RejectionReasons = reasons
	}

	if err := s.customers.ApplyStatusUpdate(ctx, update); err != nil {
		return fmt.Errorf("failed to apply KYC status update: %w", err)
	}

	message := domain.KycStatusChangedEvent{
		KycLinkID:        kycLinkID,
		BridgeCustomerID: update.BridgeCustomerID,
		KycStatus:        string(kycStatus),
		TosStatus:        string(tosStatus),
		RejectionReasons: update.RejectionReasons,
	}
	return s.publisher.Publish(ctx, BridgeEventsExchange, "customer.kyc_status", message)
}

// ProcessTransferEvent applies a transfer event: it upserts the deposit row
// keyed by the Bridge transfer id and publishes a DepositUpdatedEvent.
func (s *EventService) ProcessTransferEvent(ctx context.Context, event *domain.WebhookEvent) error {
	status, ok := webhook.ExtractDepositStatus(event)
	if !ok {
		log.Printf("Transfer event %s carries no deposit status, skipping", event.EventID)
		return nil
	}

	object := event.EventObject
	transferID, ok := objectString(object, "id")
	if !ok {
		log.Printf("Missing transfer id in event %s, skipping", event.EventID)
		return nil
	}

	// Events for the static template itself carry no funds movement.
	if features, ok := objectMap(object, "features"); ok {
		if static, ok := features["static_template"].(bool); ok && static {
			log.Printf("Ignoring static template event for transfer %s", transferID)
			return nil
		}
	}

	bridgeCustomerID, ok := objectString(object, "on_behalf_of")
	if !ok {
		log.Printf("Missing on_behalf_of for transfer %s, skipping", transferID)
		return nil
	}

	source, _ := objectMap(object, "source")
	receipt, _ := objectMap(object, "receipt")

	amount, ok := objectString(object, "amount")
	if !ok {
		amount, ok = objectString(receipt, "final_amount")
	}
	if !ok {
		log.Printf("Missing amount for transfer %s, skipping", transferID)
		return nil
	}

	currency, ok := objectString(object, "currency")
	if !ok {
		if currency, ok = objectString(source, "currency"); !ok {
			currency = "usd"
		}
	}

	paymentRail, ok := objectString(source, "payment_rail")
	if !ok {
		paymentRail = string(domain.PaymentRailACHPush)
	}

	customerID, err := s.customers.FindIDByBridgeCustomerID(ctx, bridgeCustomerID)
	if err != nil {
		return fmt.Errorf("bridge customer %s not found: %w", bridgeCustomerID, err)
	}

	deposit := store.DepositUpsert{
		BridgeTransferID:    transferID,
		CustomerID:          customerID,
		Status:              status,
		PaymentRail:         paymentRail,
		Amount:              amount,
		Currency:            currency,
		SenderName:          firstString(source, "sender_name", "originator_name"),
		SenderRoutingNumber: firstString(source, "sender_bank_routing_number", "bank_routing_number"),
		TraceNumber:         firstString(source, "trace_number", "imad"),
		DestinationTxHash:   destinationTxHash(object, receipt),
		LastEventID:         event.EventID,
		LastEventType:       event.EventType,
	}
	if err := s.deposits.UpsertDeposit(ctx, deposit); err != nil {
		return fmt.Errorf("failed to upsert deposit for transfer %s: %w", transferID, err)
	}

	message := domain.DepositUpdatedEvent{
		BridgeTransferID: transferID,
		BridgeCustomerID: bridgeCustomerID,
		Status:           status,
		PaymentRail:      paymentRail,
		Amount:           amount,
		Currency:         currency,
		EventID:          event.EventID,
		EventType:        event.EventType,
	}
	return s.publisher.Publish(ctx, BridgeEventsExchange, "deposit.updated", message)
}

// ProcessVirtualAccountActivity applies a virtual_account.activity event.
// Deactivation and reactivation flip the stored account status; deposit
// activity upserts a deposit row like transfer events do.
func (s *EventService) ProcessVirtualAccountActivity(ctx context.Context, event *domain.WebhookEvent) error {
	activity, ok := objectString(event.EventObject, "type")
	if !ok {
		log.Printf("Missing activity type on virtual account event %s, skipping", event.EventID)
		return nil
	}

	switch activity {
	case "deactivation":
		return s.updateVirtualAccountStatus(ctx, event, "inactive")
	case "activation", "reactivation":
		return s.updateVirtualAccountStatus(ctx, event, "active")
	}

	status, ok := webhook.ExtractDepositStatus(event)
	if !ok {
		log.Printf("Unhandled virtual account activity %q on event %s", activity, event.EventID)
		return nil
	}

	object := event.EventObject
	activityID, ok := objectString(object, "id")
	if !ok {
		activityID = event.EventObjectID
	}
	bridgeCustomerID, _ := objectString(object, "customer_id")

	customerID := ""
	if bridgeCustomerID != "" {
		id, err := s.customers.FindIDByBridgeCustomerID(ctx, bridgeCustomerID)
		if err != nil {
			return fmt.Errorf("bridge customer %s not found: %w", bridgeCustomerID, err)
		}
		customerID = id
	}

	amount, _ := objectString(object, "amount")
	currency, ok := objectString(object, "currency")
	if !ok {
		currency = "usd"
	}
	source, _ := objectMap(object, "source")
	paymentRail, ok := objectString(source, "payment_rail")
	if !ok {
		paymentRail = string(domain.PaymentRailACHPush)
	}

	deposit := store.DepositUpsert{
		BridgeTransferID:    activityID,
		CustomerID:          customerID,
		Status:              status,
		PaymentRail:         paymentRail,
		Amount:              amount,
		Currency:            currency,
		SenderName:          firstString(source, "sender_name", "originator_name"),
		SenderRoutingNumber: firstString(source, "sender_bank_routing_number", "bank_routing_number"),
		TraceNumber:         firstString(source, "trace_number", "imad"),
		LastEventID:         event.EventID,
		LastEventType:       event.EventType,
	}
	if err := s.deposits.UpsertDeposit(ctx, deposit); err != nil {
		return fmt.Errorf("failed to upsert virtual account deposit %s: %w", activityID, err)
	}

	message := domain.DepositUpdatedEvent{
		BridgeTransferID: activityID,
		BridgeCustomerID: bridgeCustomerID,
		Status:           status,
		PaymentRail:      paymentRail,
		Amount:           amount,
		Currency:         currency,
		EventID:          event.EventID,
		EventType:        event.EventType,
	}
	return s.publisher.Publish(ctx, BridgeEventsExchange, "deposit.updated", message)
}

func (s *EventService) updateVirtualAccountStatus(ctx context.Context, event *domain.WebhookEvent, nextStatus string) error {
	virtualAccountID, ok := objectString(event.EventObject, "virtual_account_id")
	if !ok {
		return fmt.Errorf("missing virtual_account_id on event %s", event.EventID)
	}

	if err := s.accounts.UpdateStatus(ctx, virtualAccountID, nextStatus); err != nil {
		return fmt.Errorf("failed to update virtual account %s status: %w", virtualAccountID, err)
	}

	message := domain.VirtualAccountStatusEvent{
		BridgeVirtualAccountID: virtualAccountID,
		Status:                 nextStatus,
	}
	return s.publisher.Publish(ctx, BridgeEventsExchange, "virtual_account.status", message)
}

func objectString(object map[string]any, key string) (string, bool) {
	if object == nil {
		return "", false
	}
	s, ok := object[key].(string)
	return s, ok
}

func objectMap(object map[string]any, key string) (map[string]any, bool) {
	if object == nil {
		return nil, false
	}
	m, ok := object[key].(map[string]any)
	return m, ok
}

func firstString(object map[string]any, keys ...string) *string {
	for _, key := range keys {
		if s, ok := objectString(object, key); ok && s != "" {
			return &s
		}
	}
	return nil
}

func destinationTxHash(object, receipt map[string]any) *string {
	if hash := firstString(object, "destination_tx_hash"); hash != nil {
		return hash
	}
	return firstString(receipt, "destination_tx_hash")
}
