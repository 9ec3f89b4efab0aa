package domain

import (
	"context"

	"github.com/vendly/vendly/pkg/db/option"
	"gorm.io/gorm"
)

// PurchaseRow is a list row joined with the product name.
type PurchaseRow struct {
	Purchase
	ProductName string `json:"product_name"`
}

type Repository interface {
	// Transaction runs fn inside a database transaction. The repository
	// passed to fn is bound to that transaction.
	Transaction(ctx context.Context, fn func(tx *gorm.DB, repo Repository) error) error

	Create(ctx context.Context, purchase *Purchase) error
	Update(ctx context.Context, orgID, id int64, fields map[string]any) error
	Delete(ctx context.Context, orgID, id int64) error
	FindByID(ctx context.Context, orgID, id int64) (*Purchase, error)
	List(ctx context.Context, orgID int64, opts ...option.Option) ([]PurchaseRow, error)
	Count(ctx context.Context, orgID int64) (int64, error)
	CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error)
}
