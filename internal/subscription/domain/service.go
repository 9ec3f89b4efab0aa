package domain

import (
	"context"
	"errors"
	"time"

	"github.com/vendly/vendly/pkg/db/option"
)

type Service interface {
	// List pages through the organization's subscription history joined
	// with plan names.
	List(ctx context.Context, orgID int64, req ListRequest) (*ListResponse, error)
	// GetForOrg returns the organization's subscription with its plan,
	// provisioning a freemium subscription when none exists.
	GetForOrg(ctx context.Context, orgID int64) (*Subscription, error)
	// ActivatePremium points the subscription at the premium plan after a
	// successful payment.
	ActivatePremium(ctx context.Context, req ActivatePremiumRequest) error
	// SyncPeriod updates period and status by provider subscription id.
	SyncPeriod(ctx context.Context, req SyncPeriodRequest) error
	// RevertToFreemium resets the subscription after cancellation or a
	// failed payment.
	RevertToFreemium(ctx context.Context, orgID int64) error

	Entitlements(ctx context.Context, orgID int64) (*Entitlements, error)
}

type ActivatePremiumRequest struct {
	OrgID                int64
	StripeSubscriptionID string
	Status               string
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
}

type SyncPeriodRequest struct {
	StripeSubscriptionID string
	Status               string
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
}

type ListRequest struct {
	Search string
	Status string
	Page   int
	Order  *option.Order
}

type ListResponse struct {
	Items []SubscriptionRow `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidStatus       = errors.New("invalid_status")
)

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusPastDue, StatusCanceled:
		return true
	}
	return false
}
