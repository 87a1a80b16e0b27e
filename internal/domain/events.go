/**
 * @description
 * This file defines the internal event payloads the bridge-service publishes
 * to RabbitMQ after processing a Bridge webhook. Downstream services consume
 * these instead of talking to Bridge directly.
 *
 * @notes
 * - Payloads carry canonical status values only; raw Bridge payloads never
 *   leave this service.
 */
package domain

// KycStatusChangedEvent is published when a customer's KYC or TOS status
// changes. Empty status fields mean the webhook did not carry that status.
type KycStatusChangedEvent struct {
	KycLinkID        string  `json:"kyc_link_id"`
	BridgeCustomerID *string `json:"bridge_customer_id,omitempty"`
	KycStatus        string  `json:"kyc_status,omitempty"`
	TosStatus        string  `json:"tos_status,omitempty"`
	RejectionReasons []any   `json:"rejection_reasons,omitempty"`
}

// DepositUpdatedEvent is published when a deposit moves to a new canonical
// status, whether it arrived via a transfer or virtual-account activity event.
type DepositUpdatedEvent struct {
	BridgeTransferID string        `json:"bridge_transfer_id"`
	BridgeCustomerID string        `json:"bridge_customer_id,omitempty"`
	Status           DepositStatus `json:"status"`
	PaymentRail      string        `json:"payment_rail,omitempty"`
	Amount           string        `json:"amount,omitempty"`
	Currency         string        `json:"currency"`
	EventID          string        `json:"event_id"`
	EventType        string        `json:"event_type"`
}

// VirtualAccountStatusEvent is published when a virtual account is
// deactivated or reactivated.
type VirtualAccountStatusEvent struct {
	BridgeVirtualAccountID string `json:"bridge_virtual_account_id"`
	Status                 string `json:"status"`
}
