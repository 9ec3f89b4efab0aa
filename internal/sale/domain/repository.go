package domain

import (
	"context"
	"time"

	"github.com/vendly/vendly/pkg/db/option"
	"gorm.io/gorm"
)

// SaleRow is a list row joined with the customer name.
type SaleRow struct {
	Sale
	CustomerName string `json:"customer_name"`
}

// Totals aggregates completed sales for profit reporting. Revenue is
// line price times quantity plus shipping; cost is line unit price
// times quantity.
type Totals struct {
	Revenue float64
	Cost    float64
}

type Repository interface {
	// Transaction runs fn inside a database transaction. The repository
	// passed to fn is bound to that transaction.
	Transaction(ctx context.Context, fn func(tx *gorm.DB, repo Repository) error) error

	CreateSale(ctx context.Context, sale *Sale) error
	CreateLines(ctx context.Context, lines []SaleProduct) error
	DeleteLines(ctx context.Context, saleID int64) error
	GetLines(ctx context.Context, saleID int64) ([]SaleProduct, error)
	Update(ctx context.Context, orgID, id int64, fields map[string]any) error
	Delete(ctx context.Context, orgID, id int64) error
	FindByID(ctx context.Context, orgID, id int64) (*Sale, error)
	List(ctx context.Context, orgID int64, opts ...option.Option) ([]SaleRow, error)
	Count(ctx context.Context, orgID int64, since, until *time.Time) (int64, error)
	CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error)
	CompletedTotals(ctx context.Context, orgID int64, since, until *time.Time) (Totals, error)
}
