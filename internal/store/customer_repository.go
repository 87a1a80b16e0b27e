/**
 * @description
 * This file implements the data access layer for Bridge customer records. A
 * row in `bridge_customers` tracks one user's KYC link and its current
 * KYC/TOS status as reported by webhooks and reconciliation.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: The PostgreSQL driver and connection
 *   pool manager.
 *
 * @notes
 * - Rejection attempts are incremented only on rejection events. Webhook
 *   deduplication by event_id upstream prevents double-counting.
 */
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCustomerRepository is the PostgreSQL implementation of the
// CustomerRepository.
type PostgresCustomerRepository struct {
	db *pgxpool.Pool
}

// NewPostgresCustomerRepository creates a new PostgresCustomerRepository.
func NewPostgresCustomerRepository(db *pgxpool.Pool) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// ApplyStatusUpdate updates the KYC/TOS status of the customer record
// identified by its KYC link id.
func (r *PostgresCustomerRepository) ApplyStatusUpdate(ctx context.Context, update CustomerStatusUpdate) error {
	var rejectionReasons []byte
	if update.RejectionReasons != nil {
		encoded, err := json.Marshal(update.RejectionReasons)
		if err != nil {
			return fmt.Errorf("failed to encode rejection reasons: %w", err)
		}
		rejectionReasons = encoded
	}

	incrementRejections := update.KycStatus != nil && *update.KycStatus == "rejected"

	query := `
        UPDATE bridge_customers
        SET bridge_customer_id = COALESCE($2, bridge_customer_id),
            kyc_status = COALESCE($3, kyc_status),
            tos_status = COALESCE($4, tos_status),
            rejection_reasons = COALESCE($5, rejection_reasons),
            rejection_attempts = rejection_attempts + CASE WHEN $6 THEN 1 ELSE 0 END,
            updated_at = NOW()
        WHERE kyc_link_id = $1
    `
	commandTag, err := r.db.Exec(ctx, query,
		update.KycLinkID,
		update.BridgeCustomerID,
		statusText(update.KycStatus),
		statusText(update.TosStatus),
		rejectionReasons,
		incrementRejections,
	)
	if err != nil {
		log.Printf("Error updating bridge customer for kyc link %s: %v", update.KycLinkID, err)
		return err
	}

	if commandTag.RowsAffected() == 0 {
		log.Printf("Warning: No bridge customer found with kyc_link_id %s", update.KycLinkID)
	}
	return nil
}

// FindIDByBridgeCustomerID returns the internal customer record id for a
// Bridge customer id.
func (r *PostgresCustomerRepository) FindIDByBridgeCustomerID(ctx context.Context, bridgeCustomerID string) (string, error) {
	query := `
        SELECT id FROM bridge_customers WHERE bridge_customer_id = $1 LIMIT 1
    `
	var id string
	if err := r.db.QueryRow(ctx, query, bridgeCustomerID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// ListPendingKycLinkIDs returns KYC link ids whose status is still
// in-flight, for the reconciliation job to re-check against Bridge.
func (r *PostgresCustomerRepository) ListPendingKycLinkIDs(ctx context.Context, limit int) ([]string, error) {
	query := `
        SELECT kyc_link_id FROM bridge_customers
        WHERE kyc_status IN ('not_started', 'incomplete', 'under_review', 'awaiting_questionnaire', 'awaiting_ubo')
        ORDER BY updated_at ASC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// statusText converts a typed status pointer into a nullable text parameter.
func statusText[T ~string](status *T) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}
