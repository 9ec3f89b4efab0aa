package domain

import (
	"context"
	"time"

	"github.com/vendly/vendly/pkg/db/option"
	"gorm.io/gorm"
)

// MostSoldProduct is a sales aggregate row.
type MostSoldProduct struct {
	ProductID int64  `json:"product_id,string"`
	Name      string `json:"name"`
	TotalQty  int64  `json:"total_qty"`
}

type Repository interface {
	// WithTx returns a copy of the repository bound to tx so stock
	// adjustments can join an enclosing transaction.
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, orgID, id int64, fields map[string]any) error
	Delete(ctx context.Context, orgID, id int64) error
	FindByID(ctx context.Context, orgID, id int64) (*Product, error)
	FindByIDs(ctx context.Context, orgID int64, ids []int64) ([]Product, error)
	List(ctx context.Context, orgID int64, opts ...option.Option) ([]Product, error)
	Count(ctx context.Context, orgID int64, since, until *time.Time) (int64, error)
	CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error)
	InStockCount(ctx context.Context, orgID int64) (int64, error)
	AdjustStock(ctx context.Context, orgID, id int64, delta int) error
	MostSoldProducts(ctx context.Context, orgID int64, since, until *time.Time, limit int) ([]MostSoldProduct, error)
}
