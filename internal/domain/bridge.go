/**
 * @description
 * This file defines the Go structs and enumerated values that model the Bridge
 * API surface: customer KYC links, virtual accounts, transfers, and the webhook
 * event envelope that Bridge delivers to our webhook endpoint.
 *
 * Key features:
 * - Closed sets of canonical status values (KYC, TOS, deposit) used by the
 *   webhook classifiers and persisted by the store layer.
 * - Request/response payload structs for the outbound Bridge API client.
 * - The WebhookEvent envelope with its seven required fields; the contents of
 *   `event_object` are intentionally left as a loose map because Bridge adds
 *   object-level fields over time.
 *
 * @notes
 * - These structures mirror Bridge's wire format exactly; do not rename JSON
 *   keys without checking against the Bridge API reference.
 */
package domain

// KycStatus is the canonical KYC verification status reported by Bridge.
type KycStatus string

const (
	KycStatusNotStarted            KycStatus = "not_started"
	KycStatusIncomplete            KycStatus = "incomplete"
	KycStatusUnderReview           KycStatus = "under_review"
	KycStatusApproved              KycStatus = "approved"
	KycStatusRejected              KycStatus = "rejected"
	KycStatusPaused                KycStatus = "paused"
	KycStatusOffboarded            KycStatus = "offboarded"
	KycStatusAwaitingQuestionnaire KycStatus = "awaiting_questionnaire"
	KycStatusAwaitingUBO           KycStatus = "awaiting_ubo"
)

// TosStatus is whether the customer has accepted Bridge's terms of service.
type TosStatus string

const (
	TosStatusPending  TosStatus = "pending"
	TosStatusApproved TosStatus = "approved"
)

// CustomerType distinguishes individual from business customers.
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

// PaymentRail is the fiat rail a deposit arrived on.
type PaymentRail string

const (
	PaymentRailACHPush PaymentRail = "ach_push"
	PaymentRailWire    PaymentRail = "wire"
)

// DepositStatus is the canonical lifecycle stage of funds moving through a
// virtual account or transfer. The `refund` value only ever comes from the
// virtual-account activity table; transfers report `refunded`. Bridge's two
// event categories genuinely disagree on this name, so both values exist.
type DepositStatus string

const (
	DepositStatusAwaitingFunds       DepositStatus = "awaiting_funds"
	DepositStatusFundsReceived       DepositStatus = "funds_received"
	DepositStatusFundsScheduled      DepositStatus = "funds_scheduled"
	DepositStatusInReview            DepositStatus = "in_review"
	DepositStatusPaymentSubmitted    DepositStatus = "payment_submitted"
	DepositStatusPaymentProcessed    DepositStatus = "payment_processed"
	DepositStatusUndeliverable       DepositStatus = "undeliverable"
	DepositStatusReturned            DepositStatus = "returned"
	DepositStatusMissingReturnPolicy DepositStatus = "missing_return_policy"
	DepositStatusRefunded            DepositStatus = "refunded"
	DepositStatusCanceled            DepositStatus = "canceled"
	DepositStatusError               DepositStatus = "error"
	DepositStatusRefund              DepositStatus = "refund"
)

// TransferState is the state of a Bridge orchestration transfer.
type TransferState string

const (
	TransferStateAwaitingFunds       TransferState = "awaiting_funds"
	TransferStateInReview            TransferState = "in_review"
	TransferStateFundsReceived       TransferState = "funds_received"
	TransferStatePaymentSubmitted    TransferState = "payment_submitted"
	TransferStatePaymentProcessed    TransferState = "payment_processed"
	TransferStateUndeliverable       TransferState = "undeliverable"
	TransferStateReturned            TransferState = "returned"
	TransferStateMissingReturnPolicy TransferState = "missing_return_policy"
	TransferStateRefunded            TransferState = "refunded"
	TransferStateCanceled            TransferState = "canceled"
	TransferStateError               TransferState = "error"
)

// VirtualAccountStatus is the lifecycle status of a Bridge virtual account.
type VirtualAccountStatus string

const (
	VirtualAccountActivated   VirtualAccountStatus = "activated"
	VirtualAccountDeactivated VirtualAccountStatus = "deactivated"
)

// Webhook event categories Bridge delivers to us.
const (
	EventCategoryKycLink                = "kyc_link"
	EventCategoryVirtualAccountActivity = "virtual_account.activity"
	EventCategoryTransfer               = "transfer"
)

// WebhookEvent is the envelope of every webhook payload from Bridge. All
// fields except EventObjectStatus and EventObjectChanges are required; the
// parser in internal/webhook rejects payloads missing any of them.
type WebhookEvent struct {
	APIVersion         string         `json:"api_version"`
	EventID            string         `json:"event_id"`
	EventCategory      string         `json:"event_category"`
	EventType          string         `json:"event_type"`
	EventObjectID      string         `json:"event_object_id"`
	EventObjectStatus  *string        `json:"event_object_status,omitempty"`
	EventObject        map[string]any `json:"event_object"`
	EventObjectChanges map[string]any `json:"event_object_changes,omitempty"`
	EventCreatedAt     string         `json:"event_created_at"`
}

// KycLinkRequest is the body for creating a hosted KYC flow for a customer.
type KycLinkRequest struct {
	FullName     string       `json:"full_name,omitempty"`
	Email        string       `json:"email"`
	Type         CustomerType `json:"type"`
	RedirectURI  string       `json:"redirect_uri,omitempty"`
	Endorsements []string     `json:"endorsements,omitempty"`
}

// KycLinkResponse is Bridge's representation of a KYC link.
type KycLinkResponse struct {
	ID               string       `json:"id"`
	FullName         string       `json:"full_name"`
	Email            string       `json:"email"`
	Type             CustomerType `json:"type"`
	KycLink          string       `json:"kyc_link"`
	TosLink          string       `json:"tos_link"`
	KycStatus        KycStatus    `json:"kyc_status"`
	TosStatus        TosStatus    `json:"tos_status"`
	CustomerID       *string      `json:"customer_id"`
	RejectionReasons []any        `json:"rejection_reasons"`
	CreatedAt        string       `json:"created_at"`
}

// CustomerResponse is Bridge's representation of a customer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	KycStatus KycStatus `json:"kyc_status"`
	TosStatus TosStatus `json:"tos_status"`
	CreatedAt string    `json:"created_at"`
}

// CurrencyAmount identifies the source side of a virtual account.
type CurrencyAmount struct {
	Currency string `json:"currency"`
}

// CryptoDestination is where a virtual account forwards deposited fiat.
type CryptoDestination struct {
	Currency    string `json:"currency"`
	PaymentRail string `json:"payment_rail"`
	Address     string `json:"address"`
}

// VirtualAccountRequest is the body for creating a virtual account that
// forwards USD deposits to an on-chain address.
type VirtualAccountRequest struct {
	Source              CurrencyAmount    `json:"source"`
	Destination         CryptoDestination `json:"destination"`
	DeveloperFeePercent string            `json:"developer_fee_percent,omitempty"`
}

// SourceDepositInstructions are the bank details a user wires money to.
type SourceDepositInstructions struct {
	Currency               string        `json:"currency"`
	BankName               string        `json:"bank_name,omitempty"`
	BankAddress            string        `json:"bank_address,omitempty"`
	BankRoutingNumber      string        `json:"bank_routing_number,omitempty"`
	BankAccountNumber      string        `json:"bank_account_number,omitempty"`
	BankBeneficiaryName    string        `json:"bank_beneficiary_name,omitempty"`
	BankBeneficiaryAddress string        `json:"bank_beneficiary_address,omitempty"`
	AccountHolderName      string        `json:"account_holder_name,omitempty"`
	DepositMessage         string        `json:"deposit_message,omitempty"`
	PaymentRail            PaymentRail   `json:"payment_rail,omitempty"`
	PaymentRails           []PaymentRail `json:"payment_rails,omitempty"`
}

// VirtualAccountResponse is Bridge's representation of a virtual account.
type VirtualAccountResponse struct {
	ID                        string                    `json:"id"`
	Status                    VirtualAccountStatus      `json:"status"`
	CustomerID                string                    `json:"customer_id"`
	CreatedAt                 string                    `json:"created_at"`
	SourceDepositInstructions SourceDepositInstructions `json:"source_deposit_instructions"`
	Destination               CryptoDestination         `json:"destination"`
	DeveloperFeePercent       string                    `json:"developer_fee_percent,omitempty"`
}

// VirtualAccountList is the paginated wrapper Bridge returns for listings.
type VirtualAccountList struct {
	Count int                      `json:"count"`
	Data  []VirtualAccountResponse `json:"data"`
}

// TransferEndpoint describes one side of an orchestration transfer.
type TransferEndpoint struct {
	Currency    string `json:"currency,omitempty"`
	PaymentRail string `json:"payment_rail,omitempty"`
	Address     string `json:"address,omitempty"`
	ToAddress   string `json:"to_address,omitempty"`
}

// TransferFeatures toggles Bridge transfer-template behavior.
type TransferFeatures struct {
	StaticTemplate      bool `json:"static_template,omitempty"`
	FlexibleAmount      bool `json:"flexible_amount,omitempty"`
	AllowAnyFromAddress bool `json:"allow_any_from_address,omitempty"`
}

// TransferRequest is the body for creating an orchestration transfer.
type TransferRequest struct {
	Amount              string            `json:"amount,omitempty"`
	OnBehalfOf          string            `json:"on_behalf_of,omitempty"`
	Source              TransferEndpoint  `json:"source"`
	Destination         TransferEndpoint  `json:"destination"`
	DeveloperFeePercent string            `json:"developer_fee_percent,omitempty"`
	Features            *TransferFeatures `json:"features,omitempty"`
}

// TransferReceipt is the fee breakdown attached to a settled transfer.
type TransferReceipt struct {
	DeveloperFee      string `json:"developer_fee,omitempty"`
	ExchangeFee       string `json:"exchange_fee,omitempty"`
	GasFee            string `json:"gas_fee,omitempty"`
	FinalAmount       string `json:"final_amount,omitempty"`
	DestinationTxHash string `json:"destination_tx_hash,omitempty"`
}

// TransferResponse is Bridge's representation of an orchestration transfer.
type TransferResponse struct {
	ID                        string                     `json:"id"`
	State                     TransferState              `json:"state"`
	OnBehalfOf                *string                    `json:"on_behalf_of,omitempty"`
	Source                    TransferEndpoint           `json:"source"`
	Destination               *TransferEndpoint          `json:"destination,omitempty"`
	SourceDepositInstructions *SourceDepositInstructions `json:"source_deposit_instructions,omitempty"`
	Receipt                   *TransferReceipt           `json:"receipt,omitempty"`
	TemplateID                *string                    `json:"template_id,omitempty"`
	CreatedAt                 string                     `json:"created_at,omitempty"`
	UpdatedAt                 string                     `json:"updated_at,omitempty"`
}

// WebhookRegistration is the body for registering our webhook endpoint.
type WebhookRegistration struct {
	URL           string   `json:"url"`
	EnabledEvents []string `json:"enabled_events"`
}

// WebhookResponse is Bridge's representation of a registered webhook,
// including the public key used to verify signatures.
type WebhookResponse struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	URL             string   `json:"url"`
	EventCategories []string `json:"event_categories"`
	PublicKey       string   `json:"public_key"`
	CreatedAt       string   `json:"created_at"`
}
