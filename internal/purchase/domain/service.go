package domain

import (
	"context"
	"errors"
	"time"

	"github.com/vendly/vendly/pkg/db/option"
)

type Service interface {
	List(ctx context.Context, orgID int64, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, orgID, id int64) (*Purchase, error)
	Create(ctx context.Context, orgID int64, req UpsertRequest) (*Purchase, error)
	Update(ctx context.Context, orgID, id int64, req UpsertRequest) (*Purchase, error)
	Delete(ctx context.Context, orgID, id int64) error
}

type ListRequest struct {
	Search string
	Page   int
	Order  *option.Order
}

type ListResponse struct {
	Items []PurchaseRow `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
}

type UpsertRequest struct {
	ProductID     int64      `json:"product_id,string"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	PurchasePrice float64    `json:"purchase_price"`
	QtyPurchased  int        `json:"qty_purchased"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrPurchaseNotFound    = errors.New("purchase not found")
)
