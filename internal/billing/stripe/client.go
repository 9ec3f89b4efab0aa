package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vendly/vendly/internal/billing/domain"
)

// Client is a thin form-encoded client for the handful of Stripe REST
// calls the billing service makes.
type Client struct {
	apiKey string
	client *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: strings.TrimSpace(apiKey),
		client: &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *Client) CreateCustomer(ctx context.Context, email string, orgID int64) (string, error) {
	values := url.Values{}
	values.Set("email", strings.TrimSpace(email))
	values.Set("metadata[org_id]", strconv.FormatInt(orgID, 10))

	var customer struct {
		ID string `json:"id"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/customers", values, &customer); err != nil {
		return "", err
	}
	if customer.ID == "" {
		return "", errors.New("stripe_response_invalid")
	}
	return customer.ID, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*domain.Session, error) {
	values := url.Values{}
	values.Set("mode", "subscription")
	values.Set("customer", customerID)
	values.Set("line_items[0][price]", priceID)
	values.Set("line_items[0][quantity]", "1")
	values.Set("success_url", successURL)
	values.Set("cancel_url", cancelURL)

	var session domain.Session
	if err := c.doRequest(ctx, http.MethodPost, "/v1/checkout/sessions", values, &session); err != nil {
		return nil, err
	}
	if session.ID == "" || session.URL == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &session, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*domain.Session, error) {
	values := url.Values{}
	values.Set("customer", customerID)
	values.Set("return_url", returnURL)

	var session domain.Session
	if err := c.doRequest(ctx, http.MethodPost, "/v1/billing_portal/sessions", values, &session); err != nil {
		return nil, err
	}
	if session.ID == "" || session.URL == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &session, nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*domain.ProviderSubscription, error) {
	var sub struct {
		ID                 string `json:"id"`
		Status             string `json:"status"`
		Customer           string `json:"customer"`
		CurrentPeriodStart int64  `json:"current_period_start"`
		CurrentPeriodEnd   int64  `json:"current_period_end"`
		CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(subscriptionID), nil, &sub); err != nil {
		return nil, err
	}
	if sub.ID == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &domain.ProviderSubscription{
		ID:                 sub.ID,
		Status:             sub.Status,
		CustomerID:         sub.Customer,
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}, nil
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, values url.Values, out any) error {
	if c.apiKey == "" {
		return domain.ErrNotConfigured
	}

	body := ""
	if values != nil {
		body = values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, "https://api.stripe.com"+path, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return errors.New("stripe_request_failed")
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe_request_failed"
		}
		return errors.New(message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
