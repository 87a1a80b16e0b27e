package bridgeclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sendapp/bridge-service/internal/domain"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-api-key", true)
	c.BaseURL = serverURL
	return c
}

func TestNewClientSelectsEnvironment(t *testing.T) {
	if got := NewClient("k", false).BaseURL; got != "https://api.bridge.xyz/v0" {
		t.Fatalf("expected production base URL, got %q", got)
	}
	if got := NewClient("k", true).BaseURL; got != "https://api.sandbox.bridge.xyz/v0" {
		t.Fatalf("expected sandbox base URL, got %q", got)
	}
}

func TestPostGeneratesFreshIdempotencyKeys(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.KycLinkResponse{ID: "kyc_1"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	req := domain.KycLinkRequest{Email: "user@example.com", Type: domain.CustomerTypeIndividual}

	for i := 0; i < 2; i++ {
		if _, err := client.CreateKycLink(context.Background(), req, nil); err != nil {
			t.Fatalf("CreateKycLink failed: %v", err)
		}
	}

	if len(keys) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(keys))
	}
	for _, key := range keys {
		if _, err := uuid.Parse(key); err != nil {
			t.Fatalf("expected generated key to be a UUID, got %q", key)
		}
	}
	if keys[0] == keys[1] {
		t.Fatal("expected a fresh idempotency key per call")
	}
}

func TestPostReusesCallerSuppliedIdempotencyKey(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.KycLinkResponse{ID: "kyc_1"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	opts := &RequestOptions{IdempotencyKey: "kyc-user-42"}
	if _, err := client.CreateKycLink(context.Background(), domain.KycLinkRequest{Email: "user@example.com"}, opts); err != nil {
		t.Fatalf("CreateKycLink failed: %v", err)
	}

	if got != "kyc-user-42" {
		t.Fatalf("expected caller-supplied key to be sent verbatim, got %q", got)
	}
}

func TestRequestHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "test-api-key" {
			t.Errorf("missing Api-Key header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing Content-Type header")
		}
		if r.Method == http.MethodGet && r.Header.Get("Idempotency-Key") != "" {
			t.Errorf("GET requests must not carry an Idempotency-Key")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.CustomerResponse{ID: "cust_1"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GetCustomer(context.Background(), "cust_1"); err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
}

func TestAPIErrorCarriesFullResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{
			"code": "duplicate_record",
			"message": "A KYC link already exists for this email",
			"details": {"email": "user@example.com"},
			"existing_kyc_link_id": "kyc_existing_99"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateKycLink(context.Background(), domain.KycLinkRequest{Email: "user@example.com"}, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", apiErr.Status)
	}
	if apiErr.Code != "duplicate_record" {
		t.Fatalf("expected code duplicate_record, got %q", apiErr.Code)
	}
	if apiErr.Details["email"] != "user@example.com" {
		t.Fatalf("expected details to be parsed, got %v", apiErr.Details)
	}
	// Provider-specific extra fields must survive in ResponseBody so callers
	// can recover data like an existing resource id.
	if apiErr.ResponseBody["existing_kyc_link_id"] != "kyc_existing_99" {
		t.Fatalf("expected extra error fields in ResponseBody, got %v", apiErr.ResponseBody)
	}
}

func TestAPIErrorMarshalOmitsResponseBody(t *testing.T) {
	apiErr := &APIError{
		Status:       400,
		Code:         "invalid_parameters",
		Message:      "bad request",
		ResponseBody: map[string]any{"ssn": "sensitive"},
	}

	encoded, err := json.Marshal(apiErr)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(encoded), "sensitive") {
		t.Fatalf("marshaled error must not include the raw response body: %s", encoded)
	}
	if !strings.Contains(string(encoded), "invalid_parameters") {
		t.Fatalf("marshaled error should include the code: %s", encoded)
	}
}

func TestAPIErrorWithNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetCustomer(context.Background(), "cust_1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != "upstream timeout" {
		t.Fatalf("expected raw text preserved, got status=%d message=%q", apiErr.Status, apiErr.Message)
	}
}

func TestSuccessfulResponseDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers/cust_1/virtual_accounts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 1, "data": [{"id": "va_1", "status": "activated", "customer_id": "cust_1"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	list, err := client.ListVirtualAccounts(context.Background(), "cust_1")
	if err != nil {
		t.Fatalf("ListVirtualAccounts failed: %v", err)
	}
	if list.Count != 1 || len(list.Data) != 1 || list.Data[0].ID != "va_1" {
		t.Fatalf("unexpected listing: %+v", list)
	}
	if list.Data[0].Status != domain.VirtualAccountActivated {
		t.Fatalf("expected activated status, got %q", list.Data[0].Status)
	}
}

func TestRequestHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GetCustomer(ctx, "cust_1"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
