package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/vendly/vendly/internal/billing/domain"
	"github.com/vendly/vendly/internal/observability/metrics"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	"go.uber.org/zap"
)

type service struct {
	log      *zap.Logger
	verifier domain.Verifier
	client   domain.ProviderClient
	orgs     organizationdomain.Repository
	subs     subscriptiondomain.Service
	subsRepo subscriptiondomain.Repository
	plans    plandomain.Service
	metrics  *metrics.Metrics
}

func New(
	log *zap.Logger,
	verifier domain.Verifier,
	client domain.ProviderClient,
	orgs organizationdomain.Repository,
	subs subscriptiondomain.Service,
	subsRepo subscriptiondomain.Repository,
	plans plandomain.Service,
	m *metrics.Metrics,
) domain.Service {
	return &service{
		log:      log.Named("billing.service"),
		verifier: verifier,
		client:   client,
		orgs:     orgs,
		subs:     subs,
		subsRepo: subsRepo,
		plans:    plans,
		metrics:  m,
	}
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type invoiceObject struct {
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

type subscriptionObject struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	Customer           string `json:"customer"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
}

type priceObject struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	Currency   string `json:"currency"`
	UnitAmount int64  `json:"unit_amount"`
	Active     bool   `json:"active"`
	Recurring  struct {
		Interval string `json:"interval"`
	} `json:"recurring"`
}

type productObject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (string, error) {
	if err := s.verifier.Verify(payload, headers); err != nil {
		s.metrics.RecordWebhookEvent("unverified", domain.OutcomeError)
		return domain.OutcomeError, err
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.metrics.RecordWebhookEvent("unparseable", domain.OutcomeError)
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	eventType := strings.TrimSpace(event.Type)

	outcome, err := s.dispatch(ctx, eventType, event.Data.Object)
	if err != nil {
		s.log.Error("webhook event failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
	s.metrics.RecordWebhookEvent(eventType, outcome)
	return outcome, err
}

func (s *service) dispatch(ctx context.Context, eventType string, object json.RawMessage) (string, error) {
	switch eventType {
	case "invoice.paid":
		return s.handleInvoicePaid(ctx, object)
	case "invoice.payment_failed":
		return s.handleInvoicePaymentFailed(ctx, object)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(ctx, object)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, object)
	case "price.created", "price.updated":
		return s.handlePriceChanged(ctx, object)
	case "product.created", "product.updated":
		return s.handleProductChanged(ctx, object)
	case "product.deleted":
		return s.handleProductDeleted(ctx, object)
	default:
		return domain.OutcomeIgnored, nil
	}
}

// handleInvoicePaid upgrades the paying organization to premium with the
// billing period taken from the provider subscription.
func (s *service) handleInvoicePaid(ctx context.Context, object json.RawMessage) (string, error) {
	var invoice invoiceObject
	if err := json.Unmarshal(object, &invoice); err != nil {
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	if invoice.Customer == "" || invoice.Subscription == "" {
		return domain.OutcomeError, domain.ErrMissingField
	}

	org, err := s.orgs.GetByStripeCustomerID(ctx, invoice.Customer)
	if err != nil {
		return domain.OutcomeError, domain.ErrUnknownOrganization
	}
	sub, err := s.client.GetSubscription(ctx, invoice.Subscription)
	if err != nil {
		return domain.OutcomeError, err
	}

	err = s.subs.ActivatePremium(ctx, subscriptiondomain.ActivatePremiumRequest{
		OrgID:                org.ID,
		StripeSubscriptionID: sub.ID,
		Status:               sub.Status,
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
	})
	if err != nil {
		return domain.OutcomeError, err
	}
	return domain.OutcomeProcessed, nil
}

// handleInvoicePaymentFailed reverts the organization to freemium.
func (s *service) handleInvoicePaymentFailed(ctx context.Context, object json.RawMessage) (string, error) {
	var invoice invoiceObject
	if err := json.Unmarshal(object, &invoice); err != nil {
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	if invoice.Customer == "" {
		return domain.OutcomeError, domain.ErrMissingField
	}

	org, err := s.orgs.GetByStripeCustomerID(ctx, invoice.Customer)
	if err != nil {
		return domain.OutcomeError, domain.ErrUnknownOrganization
	}
	if err := s.subs.RevertToFreemium(ctx, org.ID); err != nil {
		return domain.OutcomeError, err
	}
	return domain.OutcomeProcessed, nil
}

func (s *service) handleSubscriptionUpdated(ctx context.Context, object json.RawMessage) (string, error) {
	var sub subscriptionObject
	if err := json.Unmarshal(object, &sub); err != nil {
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	if sub.ID == "" {
		return domain.OutcomeError, domain.ErrMissingField
	}

	err := s.subs.SyncPeriod(ctx, subscriptiondomain.SyncPeriodRequest{
		StripeSubscriptionID: sub.ID,
		Status:               sub.Status,
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	})
	if err != nil {
		return domain.OutcomeError, err
	}
	return domain.OutcomeProcessed, nil
}

func (s *service) handleSubscriptionDeleted(ctx context.Context, object json.RawMessage) (string, error) {
	var sub subscriptionObject
	if err := json.Unmarshal(object, &sub); err != nil {
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	if sub.ID == "" {
		return domain.OutcomeError, domain.ErrMissingField
	}

	record, err := s.subsRepo.GetByStripeSubscriptionID(ctx, sub.ID)
	if err != nil {
		return domain.OutcomeError, domain.ErrUnknownOrganization
	}
	if err := s.subs.RevertToFreemium(ctx, record.OrgID); err != nil {
		return domain.OutcomeError, err
	}
	return domain.OutcomeProcessed, nil
}

func (s *service) handlePriceChanged(ctx context.Context, object json.RawMessage) (string, error) {
	var price priceObject
	if err := json.Unmarshal(object, &price); err != nil {
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	if price.ID == "" {
		return domain.OutcomeError, domain.ErrMissingField
	}

	err := s.plans.SyncPrice(ctx, plandomain.SyncPriceRequest{
		StripePriceID:   price.ID,
		StripeProductID: price.Product,
		Amount:          price.UnitAmount,
		Currency:        strings.ToLower(price.Currency),
		Interval:        price.Recurring.Interval,
		Active:          price.Active,
	})
	if err != nil {
		return domain.OutcomeError, err
	}
	return domain.OutcomeProcessed, nil
}

func (s *service) handleProductChanged(ctx context.Context, object json.RawMessage) (string, error) {
	var product productObject
	if err := json.Unmarshal(object, &product); err != nil {
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	if product.ID == "" {
		return domain.OutcomeError, domain.ErrMissingField
	}

	err := s.plans.SyncProduct(ctx, plandomain.SyncProductRequest{
		StripeProductID: product.ID,
		Name:            product.Name,
		Description:     product.Description,
		Active:          product.Active,
	})
	if err != nil {
		return domain.OutcomeError, err
	}
	return domain.OutcomeProcessed, nil
}

func (s *service) handleProductDeleted(ctx context.Context, object json.RawMessage) (string, error) {
	var product productObject
	if err := json.Unmarshal(object, &product); err != nil {
		return domain.OutcomeError, domain.ErrInvalidPayload
	}
	if product.ID == "" {
		return domain.OutcomeError, domain.ErrMissingField
	}
	if err := s.plans.RemoveProduct(ctx, product.ID); err != nil {
		return domain.OutcomeError, err
	}
	return domain.OutcomeProcessed, nil
}

func (s *service) CreateCheckoutSession(ctx context.Context, orgID int64, req domain.CheckoutSessionRequest) (*domain.Session, error) {
	if req.PriceID == "" || req.SuccessURL == "" || req.CancelURL == "" {
		return nil, domain.ErrMissingField
	}

	customerID, err := s.ensureCustomer(ctx, orgID, req.Email)
	if err != nil {
		return nil, err
	}
	return s.client.CreateCheckoutSession(ctx, customerID, req.PriceID, req.SuccessURL, req.CancelURL)
}

func (s *service) CreatePortalSession(ctx context.Context, orgID int64, req domain.PortalSessionRequest) (*domain.Session, error) {
	if req.ReturnURL == "" {
		return nil, domain.ErrMissingField
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.StripeCustomerID == nil || *org.StripeCustomerID == "" {
		return nil, domain.ErrUnknownOrganization
	}
	return s.client.CreatePortalSession(ctx, *org.StripeCustomerID, req.ReturnURL)
}

// ensureCustomer returns the organization's provider customer id,
// creating and persisting one on first use.
func (s *service) ensureCustomer(ctx context.Context, orgID int64, email string) (string, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return "", err
	}
	if org.StripeCustomerID != nil && *org.StripeCustomerID != "" {
		return *org.StripeCustomerID, nil
	}

	customerID, err := s.client.CreateCustomer(ctx, email, orgID)
	if err != nil {
		return "", err
	}
	err = s.orgs.Update(ctx, orgID, map[string]any{
		"stripe_customer_id": customerID,
		"updated_at":         time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return customerID, nil
}
