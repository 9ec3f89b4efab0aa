package domain

import (
	"context"
	"errors"
)

var ErrPlanNotFound = errors.New("plan not found")

type Repository interface {
	List(ctx context.Context) ([]Plan, error)
	GetByID(ctx context.Context, id int64) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	GetByStripePriceID(ctx context.Context, priceID string) (*Plan, error)
	GetByStripeProductID(ctx context.Context, productID string) (*Plan, error)
	Create(ctx context.Context, plan *Plan) error
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}
