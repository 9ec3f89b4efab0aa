package domain

import (
	"context"
	"errors"
	"time"

	"github.com/vendly/vendly/pkg/db/option"
)

type Service interface {
	List(ctx context.Context, orgID int64, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, orgID, id int64) (*Sale, error)
	Create(ctx context.Context, orgID int64, req UpsertRequest) (*MutationResult, error)
	Update(ctx context.Context, orgID, id int64, req UpsertRequest) (*MutationResult, error)
	Delete(ctx context.Context, orgID, id int64) error
	Count(ctx context.Context, orgID int64) (int64, error)
}

type ListRequest struct {
	Search string
	Status string
	Page   int
	Order  *option.Order
}

type ListResponse struct {
	Items []SaleRow `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
}

// LineRequest is one requested sale line. Name and image are optional
// client snapshots; when absent they are taken from the product row.
type LineRequest struct {
	ProductID int64   `json:"product_id,string"`
	Name      string  `json:"name"`
	ImageURL  *string `json:"image_url"`
	Price     float64 `json:"price"`
	UnitPrice float64 `json:"unit_price"`
	Qty       int     `json:"qty"`
}

type UpsertRequest struct {
	CustomerID   *int64        `json:"customer_id,string"`
	Status       string        `json:"status"`
	SaleDate     *time.Time    `json:"sale_date"`
	ShippingCost float64       `json:"shipping_cost"`
	Notes        *string       `json:"notes"`
	Products     []LineRequest `json:"products"`
}

// LowStockWarning flags a product whose stock dropped to or below the
// configured threshold after the mutation.
type LowStockWarning struct {
	ProductID    int64  `json:"product_id,string"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
}

// MutationResult is the sale after a create or update plus any low
// stock warnings produced by the stock movements.
type MutationResult struct {
	Sale     *Sale             `json:"sale"`
	LowStock []LowStockWarning `json:"low_stock,omitempty"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrEmptySale           = errors.New("sale requires at least one product")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrSaleCancelled       = errors.New("sale is cancelled")
)
