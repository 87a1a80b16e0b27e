/**
 * @description
 * Reconciliation job that re-checks in-flight KYC links against Bridge.
 * Webhooks can be lost (endpoint downtime, delivery expiry), so a periodic
 * sweep re-fetches every KYC link whose stored status is still pending and
 * applies whatever Bridge reports now.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/sendapp/bridge-service/internal/domain"
	"github.com/sendapp/bridge-service/internal/store"
)

// KycLinkFetcher is the slice of the Bridge client the reconciler needs.
type KycLinkFetcher interface {
	GetKycLink(ctx context.Context, kycLinkID string) (*domain.KycLinkResponse, error)
}

// Reconciler sweeps pending KYC links and syncs their status from Bridge.
type Reconciler struct {
	customers store.CustomerRepository
	bridge    KycLinkFetcher
	logger    *slog.Logger
	batchSize int
}

// NewReconciler creates a new Reconciler. batchSize bounds how many links a
// single sweep re-checks.
func NewReconciler(customers store.CustomerRepository, bridge KycLinkFetcher, logger *slog.Logger, batchSize int) *Reconciler {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Reconciler{
		customers: customers,
		bridge:    bridge,
		logger:    logger,
		batchSize: batchSize,
	}
}

// ReconcilePendingKyc runs one sweep. Failures on individual links are
// logged and skipped so one bad record cannot stall the rest of the batch.
func (r *Reconciler) ReconcilePendingKyc() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ids, err := r.customers.ListPendingKycLinkIDs(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("failed to list pending kyc links", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}
	r.logger.Info("reconciling pending kyc links", "count", len(ids))

	for _, id := range ids {
		link, err := r.bridge.GetKycLink(ctx, id)
		if err != nil {
			r.logger.Error("failed to fetch kyc link from Bridge", "kyc_link_id", id, "error", err)
			continue
		}

		update := store.CustomerStatusUpdate{
			KycLinkID: id,
			KycStatus: &link.KycStatus,
			TosStatus: &link.TosStatus,
		}
		if link.CustomerID != nil {
			update.BridgeCustomerID = link.CustomerID
		}
		if link.RejectionReasons != nil {
			update.RejectionReasons = link.RejectionReasons
		}

		if err := r.customers.ApplyStatusUpdate(ctx, update); err != nil {
			r.logger.Error("failed to apply reconciled kyc status", "kyc_link_id", id, "error", err)
			continue
		}
		r.logger.Info("reconciled kyc link", "kyc_link_id", id, "kyc_status", link.KycStatus, "tos_status", link.TosStatus)
	}
}
