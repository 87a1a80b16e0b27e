/**
 * @description
 * This file defines the interfaces for the data access layer (repositories).
 * The app layer depends on these interfaces rather than the concrete
 * PostgreSQL implementations so that business logic can be tested with stubs.
 */
package store

import (
	"context"

	"github.com/sendapp/bridge-service/internal/domain"
)

// CustomerStatusUpdate carries the fields a KYC webhook can change on a
// bridge_customers row. Nil status pointers mean the webhook did not carry
// that status.
type CustomerStatusUpdate struct {
	KycLinkID        string
	BridgeCustomerID *string
	KycStatus        *domain.KycStatus
	TosStatus        *domain.TosStatus
	RejectionReasons []any
}

// CustomerRepository defines database operations on Bridge customer records.
type CustomerRepository interface {
	ApplyStatusUpdate(ctx context.Context, update CustomerStatusUpdate) error
	FindIDByBridgeCustomerID(ctx context.Context, bridgeCustomerID string) (string, error)
	ListPendingKycLinkIDs(ctx context.Context, limit int) ([]string, error)
}

// DepositUpsert carries the deposit fields derived from a transfer or
// virtual-account activity event. Upserts are keyed by BridgeTransferID.
type DepositUpsert struct {
	BridgeTransferID    string
	CustomerID          string
	Status              domain.DepositStatus
	PaymentRail         string
	Amount              string
	Currency            string
	SenderName          *string
	SenderRoutingNumber *string
	TraceNumber         *string
	DestinationTxHash   *string
	LastEventID         string
	LastEventType       string
}

// DepositRepository defines database operations on deposit records.
type DepositRepository interface {
	UpsertDeposit(ctx context.Context, deposit DepositUpsert) error
}

// VirtualAccountRepository defines database operations on virtual accounts.
type VirtualAccountRepository interface {
	UpdateStatus(ctx context.Context, bridgeVirtualAccountID, status string) error
}
