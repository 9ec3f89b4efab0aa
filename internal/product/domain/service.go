package domain

import (
	"context"
	"errors"

	"github.com/vendly/vendly/pkg/db/option"
)

type Service interface {
	List(ctx context.Context, orgID int64, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, orgID, id int64) (*Product, error)
	Create(ctx context.Context, orgID int64, req UpsertRequest) (*Product, error)
	Update(ctx context.Context, orgID, id int64, req UpsertRequest) (*Product, error)
	Delete(ctx context.Context, orgID, id int64) error
	Count(ctx context.Context, orgID int64) (int64, error)
	InStockCount(ctx context.Context, orgID int64) (int64, error)
}

type ListRequest struct {
	Search string
	Page   int
	Order  *option.Order
}

type ListResponse struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
}

type UpsertRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"image_url"`
	UnitPrice    float64 `json:"unit_price"`
	RetailPrice  float64 `json:"retail_price"`
	CurrentStock *int    `json:"current_stock"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductLimit        = errors.New("product limit reached")
)
