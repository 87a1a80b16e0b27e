/**
 * @description
 * This package provides a client for the Bridge API. It encapsulates the
 * logic for making authenticated HTTP requests, attaching idempotency keys to
 * mutating calls, and translating non-success responses into a typed error
 * that keeps the full provider response available to callers.
 *
 * Key features:
 * - Base URL selected by a sandbox/production flag at construction.
 * - Every POST carries an Idempotency-Key header: the caller-supplied key
 *   when given, otherwise a fresh random UUID per call. Callers that want
 *   safe retries must pass their own key.
 * - Failed calls return *APIError carrying the status code, Bridge's error
 *   code/message/details, and the complete parsed response body. Bridge
 *   sometimes returns recoverable data (such as an existing resource id)
 *   inside an error response, so the raw body must stay reachable.
 *
 * @dependencies
 * - github.com/google/uuid: Random idempotency keys.
 * - github.com/sendapp/bridge-service/internal/domain: Bridge payload structs.
 *
 * @notes
 * - The client performs no retries. Callers control cancellation and
 *   deadlines through the context on every call; the underlying transport
 *   adds a 15 second cap as a safety net.
 */
package bridgeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sendapp/bridge-service/internal/domain"
)

const (
	productionBaseURL = "https://api.bridge.xyz/v0"
	sandboxBaseURL    = "https://api.sandbox.bridge.xyz/v0"
)

// APIError is returned for every non-2xx Bridge response. ResponseBody holds
// the entire parsed error payload, including fields this client knows nothing
// about.
type APIError struct {
	Status       int
	Code         string
	Message      string
	Details      map[string]any
	ResponseBody map[string]any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("bridge API request failed with status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("bridge API request failed with status %d: %s", e.Status, e.Message)
}

// MarshalJSON omits ResponseBody so that logging an APIError never leaks
// provider data into log sinks. The body stays reachable through the field.
func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status  int            `json:"status"`
		Code    string         `json:"code,omitempty"`
		Message string         `json:"message,omitempty"`
		Details map[string]any `json:"details,omitempty"`
	}{
		Status:  e.Status,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// RequestOptions carries per-call settings.
type RequestOptions struct {
	// IdempotencyKey, when set, is sent verbatim instead of a generated UUID.
	IdempotencyKey string
}

// Client is a client for the Bridge API.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates a new Bridge API client against the production or sandbox
// environment.
func NewClient(apiKey string, sandbox bool) *Client {
	baseURL := productionBaseURL
	if sandbox {
		baseURL = sandboxBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateKycLink creates a hosted KYC flow for a customer.
func (c *Client) CreateKycLink(ctx context.Context, req domain.KycLinkRequest, opts *RequestOptions) (*domain.KycLinkResponse, error) {
	var resp domain.KycLinkResponse
	if err := c.request(ctx, http.MethodPost, "/kyc_links", req, opts, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetKycLink fetches a KYC link by id.
func (c *Client) GetKycLink(ctx context.Context, kycLinkID string) (*domain.KycLinkResponse, error) {
	var resp domain.KycLinkResponse
	if err := c.request(ctx, http.MethodGet, "/kyc_links/"+kycLinkID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCustomerKycLink fetches the existing KYC link for a customer.
func (c *Client) GetCustomerKycLink(ctx context.Context, customerID string) (*domain.KycLinkResponse, error) {
	var resp domain.KycLinkResponse
	if err := c.request(ctx, http.MethodGet, "/customers/"+customerID+"/kyc_link", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCustomer fetches a customer by id.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*domain.CustomerResponse, error) {
	var resp domain.CustomerResponse
	if err := c.request(ctx, http.MethodGet, "/customers/"+customerID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateVirtualAccount creates a virtual account for a customer.
func (c *Client) CreateVirtualAccount(ctx context.Context, customerID string, req domain.VirtualAccountRequest, opts *RequestOptions) (*domain.VirtualAccountResponse, error) {
	var resp domain.VirtualAccountResponse
	if err := c.request(ctx, http.MethodPost, "/customers/"+customerID+"/virtual_accounts", req, opts, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListVirtualAccounts lists a customer's virtual accounts.
func (c *Client) ListVirtualAccounts(ctx context.Context, customerID string) (*domain.VirtualAccountList, error) {
	var resp domain.VirtualAccountList
	if err := c.request(ctx, http.MethodGet, "/customers/"+customerID+"/virtual_accounts", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTransfer creates an orchestration transfer.
func (c *Client) CreateTransfer(ctx context.Context, req domain.TransferRequest, opts *RequestOptions) (*domain.TransferResponse, error) {
	var resp domain.TransferResponse
	if err := c.request(ctx, http.MethodPost, "/transfers", req, opts, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransfer fetches an orchestration transfer by id.
func (c *Client) GetTransfer(ctx context.Context, transferID string) (*domain.TransferResponse, error) {
	var resp domain.TransferResponse
	if err := c.request(ctx, http.MethodGet, "/transfers/"+transferID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateWebhook registers a webhook endpoint with Bridge. The response
// carries the public key used to verify webhook signatures.
func (c *Client) CreateWebhook(ctx context.Context, req domain.WebhookRegistration, opts *RequestOptions) (*domain.WebhookResponse, error) {
	var resp domain.WebhookResponse
	if err := c.request(ctx, http.MethodPost, "/webhooks", req, opts, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// request issues one HTTP call against the Bridge API and decodes the
// response into out when out is non-nil.
func (c *Client) request(ctx context.Context, method, path string, body any, opts *RequestOptions, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	c.setHeaders(httpReq, opts)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to Bridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode successful response: %w", err)
		}
	}
	return nil
}

// setHeaders adds authentication and content-type headers. POST requests get
// an Idempotency-Key: the caller-supplied one, or a fresh UUID per call.
func (c *Client) setHeaders(req *http.Request, opts *RequestOptions) {
	req.Header.Set("Api-Key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	if req.Method == http.MethodPost {
		key := ""
		if opts != nil {
			key = opts.IdempotencyKey
		}
		if key == "" {
			key = uuid.NewString()
		}
		req.Header.Set("Idempotency-Key", key)
	}
}

// newAPIError reads the body of a failed call into an *APIError, keeping the
// complete payload alongside the well-known code/message/details fields.
func newAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = "failed to read response body"
		return apiErr
	}

	var parsed map[string]any
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		// Not JSON: keep the raw text so nothing is lost.
		apiErr.Message = string(bodyBytes)
		return apiErr
	}

	apiErr.ResponseBody = parsed
	if code, ok := parsed["code"].(string); ok {
		apiErr.Code = code
	}
	if message, ok := parsed["message"].(string); ok {
		apiErr.Message = message
	}
	if details, ok := parsed["details"].(map[string]any); ok {
		apiErr.Details = details
	}
	return apiErr
}
