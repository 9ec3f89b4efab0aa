package domain

import (
	"context"
	"errors"

	"github.com/vendly/vendly/pkg/db/option"
)

type Service interface {
	List(ctx context.Context, orgID int64, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, orgID, id int64) (*Customer, error)
	Create(ctx context.Context, orgID int64, req UpsertRequest) (*Customer, error)
	Update(ctx context.Context, orgID, id int64, req UpsertRequest) (*Customer, error)
	Delete(ctx context.Context, orgID, id int64) error
	Count(ctx context.Context, orgID int64) (int64, error)
}

type ListRequest struct {
	Search      string
	TrustStatus string
	Page        int
	Order       *option.Order
}

type ListResponse struct {
	Items []Customer `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
}

type UpsertRequest struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	MapURL      *string `json:"map_url"`
	Notes       *string `json:"notes"`
	TrustStatus string  `json:"trust_status"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidTrustStatus  = errors.New("invalid_trust_status")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerLimit       = errors.New("customer limit reached")
)
