/**
 * @description
 * This file contains the HTTP handler for processing incoming webhooks from
 * Bridge. It is the single entry point for all asynchronous notifications
 * about KYC links, transfers, and virtual-account activity.
 *
 * Key features:
 * - Security: verifies the RSA-SHA256 signature of the raw body before
 *   touching the payload, rejecting with 401 on any mismatch.
 * - Parsing: validates the payload into a typed WebhookEvent, rejecting
 *   malformed bodies with 400.
 * - Deduplication: marks every event_id in the seen-event store before
 *   processing; redelivered events are acknowledged without reprocessing.
 * - Routing: dispatches by event category to the application service and
 *   answers 200 promptly so Bridge does not retry.
 *
 * @dependencies
 * - The service's internal packages for the webhook core, domain models, and
 *   application logic.
 */
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sendapp/bridge-service/internal/domain"
	"github.com/sendapp/bridge-service/internal/webhook"
)

// SignatureHeader is the request header Bridge sends its signature in.
const SignatureHeader = "X-Webhook-Signature"

// EventProcessor applies classified webhook events to application state.
type EventProcessor interface {
	ProcessKycEvent(ctx context.Context, event *domain.WebhookEvent) error
	ProcessTransferEvent(ctx context.Context, event *domain.WebhookEvent) error
	ProcessVirtualAccountActivity(ctx context.Context, event *domain.WebhookEvent) error
}

// EventDedup records processed event ids and reports redeliveries with
// *webhook.DuplicateEventError.
type EventDedup interface {
	MarkProcessed(ctx context.Context, eventID string) error
}

// WebhookHandler processes incoming webhooks from Bridge.
type WebhookHandler struct {
	processor EventProcessor
	dedup     EventDedup
	publicKey []byte
}

// NewWebhookHandler creates a new handler for the webhook endpoint.
// publicKey is the PEM-encoded key Bridge returned when the webhook endpoint
// was registered.
func NewWebhookHandler(processor EventProcessor, dedup EventDedup, publicKey []byte) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		dedup:     dedup,
		publicKey: publicKey,
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = fmt.Sprintf("req_%d", time.Now().UnixNano())
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[%s] Error reading webhook body: %v", requestID, err)
		http.Error(w, "Cannot read request body", http.StatusBadRequest)
		return
	}

	// Verify against the raw bytes; any JSON decoding happens after this.
	if err := webhook.Verify(body, r.Header.Get(SignatureHeader), h.publicKey, webhook.VerifyOptions{}); err != nil {
		log.Printf("[%s] Webhook signature rejected: %v", requestID, err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := webhook.ParseEvent(body)
	if err != nil {
		log.Printf("[%s] Error parsing webhook payload: %v", requestID, err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	log.Printf("[%s] Received webhook event %s (%s) for object %s", requestID, event.EventType, event.EventID, event.EventObjectID)

	ctx := r.Context()

	if err := h.dedup.MarkProcessed(ctx, event.EventID); err != nil {
		var dup *webhook.DuplicateEventError
		if errors.As(err, &dup) {
			log.Printf("[%s] Duplicate event ignored: %s", requestID, dup.EventID)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Duplicate event ignored"))
			return
		}
		log.Printf("[%s] Event dedup store failed: %v", requestID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch {
	case webhook.IsKycEvent(event):
		err = h.processor.ProcessKycEvent(ctx, event)
	case webhook.IsTransferEvent(event):
		err = h.processor.ProcessTransferEvent(ctx, event)
	case webhook.IsVirtualAccountActivityEvent(event):
		err = h.processor.ProcessVirtualAccountActivity(ctx, event)
	default:
		log.Printf("[%s] Unhandled webhook event category: %s", requestID, event.EventCategory)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Webhook received"))
		return
	}

	if err != nil {
		log.Printf("[%s] Failed to process %s: %v", requestID, event.EventType, err)
		http.Error(w, "Internal server error during event processing", http.StatusInternalServerError)
		return
	}

	log.Printf("[%s] Webhook processed successfully in %v", requestID, time.Since(startTime))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Webhook received"))
}
