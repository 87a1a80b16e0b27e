/**
 * @description
 * This file implements the data access layer for deposit records. A row in
 * `bridge_deposits` tracks one transfer's lifecycle; webhook events upsert by
 * bridge_transfer_id so events arriving out of order still converge on the
 * latest status.
 */
package store

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDepositRepository is the PostgreSQL implementation of the
// DepositRepository.
type PostgresDepositRepository struct {
	db *pgxpool.Pool
}

// NewPostgresDepositRepository creates a new PostgresDepositRepository.
func NewPostgresDepositRepository(db *pgxpool.Pool) *PostgresDepositRepository {
	return &PostgresDepositRepository{db: db}
}

// UpsertDeposit inserts or updates the deposit for a Bridge transfer.
func (r *PostgresDepositRepository) UpsertDeposit(ctx context.Context, deposit DepositUpsert) error {
	query := `
        INSERT INTO bridge_deposits (
            bridge_transfer_id, customer_id, status, payment_rail, amount, currency,
            sender_name, sender_routing_number, trace_number, destination_tx_hash,
            last_event_id, last_event_type, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
        ON CONFLICT (bridge_transfer_id) DO UPDATE SET
            status = EXCLUDED.status,
            payment_rail = EXCLUDED.payment_rail,
            amount = EXCLUDED.amount,
            currency = EXCLUDED.currency,
            sender_name = COALESCE(EXCLUDED.sender_name, bridge_deposits.sender_name),
            sender_routing_number = COALESCE(EXCLUDED.sender_routing_number, bridge_deposits.sender_routing_number),
            trace_number = COALESCE(EXCLUDED.trace_number, bridge_deposits.trace_number),
            destination_tx_hash = COALESCE(EXCLUDED.destination_tx_hash, bridge_deposits.destination_tx_hash),
            last_event_id = EXCLUDED.last_event_id,
            last_event_type = EXCLUDED.last_event_type,
            updated_at = NOW()
    `
	_, err := r.db.Exec(ctx, query,
		deposit.BridgeTransferID,
		deposit.CustomerID,
		string(deposit.Status),
		deposit.PaymentRail,
		deposit.Amount,
		deposit.Currency,
		deposit.SenderName,
		deposit.SenderRoutingNumber,
		deposit.TraceNumber,
		deposit.DestinationTxHash,
		deposit.LastEventID,
		deposit.LastEventType,
	)
	if err != nil {
		log.Printf("Error upserting deposit for transfer %s: %v", deposit.BridgeTransferID, err)
		return err
	}
	return nil
}
