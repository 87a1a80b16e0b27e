/**
 * @description
 * This file parses raw webhook bodies into validated domain.WebhookEvent
 * values and classifies them into canonical status values.
 *
 * Key features:
 * - Strict validation of the seven required envelope fields; unknown fields
 *   inside event_object are preserved untouched because Bridge extends object
 *   payloads over time.
 * - Category predicates and status extractors are pure functions that report
 *   absence with an ok flag instead of returning errors.
 * - Transfer and virtual-account activity events use separate status tables:
 *   the source field differs (`state` vs `type`) and virtual-account activity
 *   normalizes `refunded` to `refund` while transfers keep `refunded`. That
 *   divergence comes from Bridge's API and must not be unified.
 */
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sendapp/bridge-service/internal/domain"
)

// ParseEvent decodes and validates a raw webhook body. Invalid JSON returns
// the wrapped json error; a structurally valid body missing a required
// envelope field (or carrying one with the wrong type) returns a *SchemaError.
func ParseEvent(rawBody []byte) (*domain.WebhookEvent, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("parse webhook body: %w", err)
	}

	var event domain.WebhookEvent
	for _, field := range []struct {
		key string
		dst *string
	}{
		{"api_version", &event.APIVersion},
		{"event_id", &event.EventID},
		{"event_category", &event.EventCategory},
		{"event_type", &event.EventType},
		{"event_object_id", &event.EventObjectID},
		{"event_created_at", &event.EventCreatedAt},
	} {
		raw, ok := payload[field.key]
		if !ok {
			return nil, &SchemaError{Field: field.key, Reason: "is required"}
		}
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil || s == nil {
			return nil, &SchemaError{Field: field.key, Reason: "must be a string"}
		}
		*field.dst = *s
	}

	rawObject, ok := payload["event_object"]
	if !ok {
		return nil, &SchemaError{Field: "event_object", Reason: "is required"}
	}
	if !bytes.HasPrefix(bytes.TrimSpace(rawObject), []byte("{")) {
		return nil, &SchemaError{Field: "event_object", Reason: "must be an object"}
	}
	if err := json.Unmarshal(rawObject, &event.EventObject); err != nil {
		return nil, &SchemaError{Field: "event_object", Reason: "must be an object"}
	}

	if raw, ok := payload["event_object_status"]; ok {
		if err := json.Unmarshal(raw, &event.EventObjectStatus); err != nil {
			return nil, &SchemaError{Field: "event_object_status", Reason: "must be a string or null"}
		}
	}

	if raw, ok := payload["event_object_changes"]; ok {
		trimmed := bytes.TrimSpace(raw)
		if !bytes.Equal(trimmed, []byte("null")) {
			if !bytes.HasPrefix(trimmed, []byte("{")) {
				return nil, &SchemaError{Field: "event_object_changes", Reason: "must be an object"}
			}
			if err := json.Unmarshal(raw, &event.EventObjectChanges); err != nil {
				return nil, &SchemaError{Field: "event_object_changes", Reason: "must be an object"}
			}
		}
	}

	return &event, nil
}

// IsKycEvent reports whether the event belongs to the kyc_link category.
func IsKycEvent(event *domain.WebhookEvent) bool {
	return event.EventCategory == domain.EventCategoryKycLink
}

// IsVirtualAccountActivityEvent reports whether the event belongs to the
// virtual_account.activity category.
func IsVirtualAccountActivityEvent(event *domain.WebhookEvent) bool {
	return event.EventCategory == domain.EventCategoryVirtualAccountActivity
}

// IsTransferEvent reports whether the event belongs to the transfer category.
func IsTransferEvent(event *domain.WebhookEvent) bool {
	return event.EventCategory == domain.EventCategoryTransfer
}

// ExtractKycStatus returns the KYC status carried by a kyc_link event. The
// second return value is false for other categories or when the object does
// not carry a kyc_status.
func ExtractKycStatus(event *domain.WebhookEvent) (domain.KycStatus, bool) {
	if !IsKycEvent(event) {
		return "", false
	}
	s, ok := objectString(event.EventObject, "kyc_status")
	return domain.KycStatus(s), ok
}

// ExtractTosStatus returns the TOS status carried by a kyc_link event.
func ExtractTosStatus(event *domain.WebhookEvent) (domain.TosStatus, bool) {
	if !IsKycEvent(event) {
		return "", false
	}
	s, ok := objectString(event.EventObject, "tos_status")
	return domain.TosStatus(s), ok
}

// transferStateStatuses maps event_object.state on transfer events to the
// canonical deposit status.
var transferStateStatuses = map[string]domain.DepositStatus{
	"awaiting_funds":          domain.DepositStatusAwaitingFunds,
	"awaiting_source_deposit": domain.DepositStatusAwaitingFunds,
	"funds_received":          domain.DepositStatusFundsReceived,
	"in_review":               domain.DepositStatusInReview,
	"payment_submitted":       domain.DepositStatusPaymentSubmitted,
	"payment_processed":       domain.DepositStatusPaymentProcessed,
	"undeliverable":           domain.DepositStatusUndeliverable,
	"returned":                domain.DepositStatusReturned,
	"missing_return_policy":   domain.DepositStatusMissingReturnPolicy,
	"refunded":                domain.DepositStatusRefunded,
	"canceled":                domain.DepositStatusCanceled,
	"error":                   domain.DepositStatusError,
}

// virtualAccountActivityStatuses maps event_object.type on virtual-account
// activity events to the canonical deposit status. Note `refunded` maps to
// `refund` here, unlike the transfer table.
var virtualAccountActivityStatuses = map[string]domain.DepositStatus{
	"funds_received":    domain.DepositStatusFundsReceived,
	"funds_scheduled":   domain.DepositStatusFundsScheduled,
	"in_review":         domain.DepositStatusInReview,
	"payment_submitted": domain.DepositStatusPaymentSubmitted,
	"payment_processed": domain.DepositStatusPaymentProcessed,
	"refunded":          domain.DepositStatusRefund,
}

// ExtractDepositStatus returns the canonical deposit status for transfer and
// virtual-account activity events. The second return value is false for other
// categories and for unknown or absent state/type values.
func ExtractDepositStatus(event *domain.WebhookEvent) (domain.DepositStatus, bool) {
	switch {
	case IsTransferEvent(event):
		state, ok := objectString(event.EventObject, "state")
		if !ok {
			return "", false
		}
		status, ok := transferStateStatuses[state]
		return status, ok
	case IsVirtualAccountActivityEvent(event):
		activity, ok := objectString(event.EventObject, "type")
		if !ok {
			return "", false
		}
		status, ok := virtualAccountActivityStatuses[activity]
		return status, ok
	default:
		return "", false
	}
}

func objectString(object map[string]any, key string) (string, bool) {
	v, ok := object[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
