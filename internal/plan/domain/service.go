package domain

import "context"

type Service interface {
	List(ctx context.Context) ([]Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	// SyncPrice updates plan pricing when the payment provider reports a
	// price change. Unknown prices are ignored.
	SyncPrice(ctx context.Context, req SyncPriceRequest) error
	// SyncProduct links provider product metadata to the matching plan,
	// creating a plan when none matches.
	SyncProduct(ctx context.Context, req SyncProductRequest) error
	// RemoveProduct removes the plan tied to a deleted provider product.
	RemoveProduct(ctx context.Context, stripeProductID string) error
}

type SyncPriceRequest struct {
	StripePriceID   string
	StripeProductID string
	Amount          int64
	Currency        string
	Interval        string
	Active          bool
}

type SyncProductRequest struct {
	StripeProductID string
	Name            string
	Description     string
	Active          bool
}
