/**
 * @description
 * This file implements the data access layer for virtual account records.
 * Bridge occasionally deactivates and reactivates virtual accounts; the
 * webhook handler mirrors those transitions into `bridge_virtual_accounts`.
 */
package store

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVirtualAccountRepository is the PostgreSQL implementation of the
// VirtualAccountRepository.
type PostgresVirtualAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresVirtualAccountRepository creates a new PostgresVirtualAccountRepository.
func NewPostgresVirtualAccountRepository(db *pgxpool.Pool) *PostgresVirtualAccountRepository {
	return &PostgresVirtualAccountRepository{db: db}
}

// UpdateStatus sets the status of a virtual account identified by its Bridge
// id.
func (r *PostgresVirtualAccountRepository) UpdateStatus(ctx context.Context, bridgeVirtualAccountID, status string) error {
	query := `
        UPDATE bridge_virtual_accounts
        SET status = $2, updated_at = NOW()
        WHERE bridge_virtual_account_id = $1
    `
	commandTag, err := r.db.Exec(ctx, query, bridgeVirtualAccountID, status)
	if err != nil {
		log.Printf("Error updating virtual account %s status: %v", bridgeVirtualAccountID, err)
		return err
	}
	if commandTag.RowsAffected() == 0 {
		log.Printf("Warning: No virtual account found with bridge id %s", bridgeVirtualAccountID)
	}
	return nil
}
