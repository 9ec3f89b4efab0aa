package domain

import (
	"context"
	"time"

	"github.com/vendly/vendly/pkg/db/option"
)

// BestCustomer is a sales aggregate row.
type BestCustomer struct {
	CustomerID int64  `json:"customer_id,string"`
	Name       string `json:"name"`
	SaleCount  int64  `json:"sale_count"`
}

type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, orgID, id int64, fields map[string]any) error
	Delete(ctx context.Context, orgID, id int64) error
	FindByID(ctx context.Context, orgID, id int64) (*Customer, error)
	List(ctx context.Context, orgID int64, opts ...option.Option) ([]Customer, error)
	Count(ctx context.Context, orgID int64, since, until *time.Time) (int64, error)
	CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error)
	BestCustomers(ctx context.Context, orgID int64, since, until *time.Time, limit int) ([]BestCustomer, error)
}
