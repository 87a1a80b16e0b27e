/**
 * @description
 * This file defines the typed errors raised by the webhook verification and
 * parsing layer. Handlers branch on these with errors.As to pick the right
 * HTTP status: SignatureError -> 401, SchemaError -> 400, DuplicateEventError
 * -> acknowledge without reprocessing.
 */
package webhook

import "fmt"

// SignatureError is returned when an inbound webhook fails signature
// verification. Message is one of a fixed set of stable strings that
// callers and tests key off.
type SignatureError struct {
	Message string
}

func (e *SignatureError) Error() string {
	return e.Message
}

// SchemaError is returned when a webhook body is syntactically valid JSON but
// is missing a required envelope field or carries one with the wrong type.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid webhook event: field %q %s", e.Field, e.Reason)
}

// DuplicateEventError is returned by an event store when a webhook with the
// same event_id has already been processed. The webhook package never raises
// this itself; deduplication is the calling handler's responsibility, backed
// by a key-value store keyed by event_id.
type DuplicateEventError struct {
	EventID string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("duplicate webhook event: %s", e.EventID)
}
