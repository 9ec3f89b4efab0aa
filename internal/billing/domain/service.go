// Package domain contains core types for the billing service: webhook
// intake from the payment provider and checkout/portal session creation.
package domain

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Outcome classifies how a webhook event was handled.
const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeError     = "error"
)

type Service interface {
	// HandleWebhook verifies the provider signature and applies the
	// event. A signature failure returns ErrInvalidSignature before any
	// database write.
	HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (outcome string, err error)

	CreateCheckoutSession(ctx context.Context, orgID int64, req CheckoutSessionRequest) (*Session, error)
	CreatePortalSession(ctx context.Context, orgID int64, req PortalSessionRequest) (*Session, error)
}

// Verifier checks the provider's webhook signature.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// ProviderClient is the thin REST surface against the payment provider.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, email string, orgID int64) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*Session, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
}

// Session is a hosted checkout or portal session.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProviderSubscription is the slice of the provider subscription object
// the webhook handlers need.
type ProviderSubscription struct {
	ID                 string
	Status             string
	CustomerID         string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
}

type CheckoutSessionRequest struct {
	PriceID    string `json:"price_id"`
	Email      string `json:"email"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type PortalSessionRequest struct {
	ReturnURL string `json:"return_url"`
}

var (
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrInvalidPayload      = errors.New("invalid_payload")
	ErrMissingField        = errors.New("missing_field")
	ErrUnknownOrganization = errors.New("unknown_organization")
	ErrNotConfigured       = errors.New("billing_not_configured")
)
