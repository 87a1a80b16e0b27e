package api

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sendapp/bridge-service/internal/domain"
	"github.com/sendapp/bridge-service/internal/webhook"
)

type processorStub struct {
	kycCalls      int
	transferCalls int
	accountCalls  int
	lastEvent     *domain.WebhookEvent
	err           error
}

func (p *processorStub) ProcessKycEvent(ctx context.Context, event *domain.WebhookEvent) error {
	p.kycCalls++
	p.lastEvent = event
	return p.err
}

func (p *processorStub) ProcessTransferEvent(ctx context.Context, event *domain.WebhookEvent) error {
	p.transferCalls++
	p.lastEvent = event
	return p.err
}

func (p *processorStub) ProcessVirtualAccountActivity(ctx context.Context, event *domain.WebhookEvent) error {
	p.accountCalls++
	p.lastEvent = event
	return p.err
}

type dedupStub struct {
	seen map[string]bool
	err  error
}

func (d *dedupStub) MarkProcessed(ctx context.Context, eventID string) error {
	if d.err != nil {
		return d.err
	}
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[eventID] {
		return &webhook.DuplicateEventError{EventID: eventID}
	}
	d.seen[eventID] = true
	return nil
}

type webhookTestEnv struct {
	handler   *WebhookHandler
	processor *processorStub
	dedup     *dedupStub
	key       *rsa.PrivateKey
}

func newWebhookTestEnv(t *testing.T) *webhookTestEnv {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	processor := &processorStub{}
	dedup := &dedupStub{}
	return &webhookTestEnv{
		handler:   NewWebhookHandler(processor, dedup, pemBytes),
		processor: processor,
		dedup:     dedup,
		key:       key,
	}
}

func (env *webhookTestEnv) signedRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	now := time.Now().UnixMilli()
	payload := fmt.Sprintf("%d.%s", now, body)
	digest := sha256.Sum256([]byte(payload))
	sig, err := rsa.SignPKCS1v15(rand.Reader, env.key, crypto.SHA256, digest[:])
	if err != nil {
		t.Fatalf("failed to sign body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/webhooks/bridge", strings.NewReader(body))
	req.Header.Set(SignatureHeader, fmt.Sprintf("t=%d,v0=%s", now, base64.StdEncoding.EncodeToString(sig)))
	return req
}

func kycEventBody(eventID string) string {
	return fmt.Sprintf(`{
		"api_version": "2024-01-01",
		"event_id": %q,
		"event_category": "kyc_link",
		"event_type": "kyc_link.kyc_status.approved",
		"event_object_id": "kyc_456",
		"event_object": {"id": "kyc_456", "kyc_status": "approved"},
		"event_created_at": "2024-01-01T00:00:00Z"
	}`, eventID)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	env := newWebhookTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/bridge", strings.NewReader(kycEventBody("evt_1")))
	req.Header.Set(SignatureHeader, "t=123,v0=bogus")
	rec := httptest.NewRecorder()

	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.processor.kycCalls != 0 {
		t.Fatal("processor must not run for unsigned payloads")
	}
}

func TestWebhookRejectsInvalidPayload(t *testing.T) {
	env := newWebhookTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not json"},
		{name: "missing required fields", body: `{"event_id": "evt_1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, env.signedRequest(t, tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestWebhookProcessesKycEvent(t *testing.T) {
	env := newWebhookTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, env.signedRequest(t, kycEventBody("evt_1")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.processor.kycCalls != 1 {
		t.Fatalf("expected one kyc processing call, got %d", env.processor.kycCalls)
	}
	if env.processor.lastEvent.EventID != "evt_1" {
		t.Fatalf("unexpected event handed to processor: %+v", env.processor.lastEvent)
	}
}

func TestWebhookIgnoresDuplicateEvents(t *testing.T) {
	env := newWebhookTestEnv(t)

	first := httptest.NewRecorder()
	env.handler.ServeHTTP(first, env.signedRequest(t, kycEventBody("evt_1")))
	second := httptest.NewRecorder()
	env.handler.ServeHTTP(second, env.signedRequest(t, kycEventBody("evt_1")))

	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", second.Code)
	}
	if !strings.Contains(second.Body.String(), "Duplicate event ignored") {
		t.Fatalf("expected duplicate acknowledgement, got %q", second.Body.String())
	}
	if env.processor.kycCalls != 1 {
		t.Fatalf("duplicate must not be reprocessed, got %d calls", env.processor.kycCalls)
	}
}

func TestWebhookAcknowledgesUnknownCategory(t *testing.T) {
	env := newWebhookTestEnv(t)

	body := `{
		"api_version": "2024-01-01",
		"event_id": "evt_9",
		"event_category": "static_memo.activity",
		"event_type": "static_memo.activity.created",
		"event_object_id": "memo_1",
		"event_object": {},
		"event_created_at": "2024-01-01T00:00:00Z"
	}`
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, env.signedRequest(t, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown category, got %d", rec.Code)
	}
	if env.processor.kycCalls+env.processor.transferCalls+env.processor.accountCalls != 0 {
		t.Fatal("unknown categories must not reach the processor")
	}
}

func TestWebhookReturns500OnProcessingFailure(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.processor.err = errors.New("db unavailable")

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, env.signedRequest(t, kycEventBody("evt_1")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWebhookReturns500WhenDedupStoreFails(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.dedup.err = errors.New("redis unavailable")

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, env.signedRequest(t, kycEventBody("evt_1")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 so Bridge retries, got %d", rec.Code)
	}
	if env.processor.kycCalls != 0 {
		t.Fatal("processor must not run when dedup cannot be recorded")
	}
}
