package domain

import (
	"context"
	"errors"

	"github.com/vendly/vendly/pkg/db/option"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRow is a list row joined with the plan name.
type SubscriptionRow struct {
	Subscription
	PlanName string `json:"plan_name"`
}

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	List(ctx context.Context, orgID int64, opts ...option.Option) ([]SubscriptionRow, error)
	CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error)
	GetByOrg(ctx context.Context, orgID int64) (*Subscription, error)
	GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}
