package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vendly/vendly/internal/sale/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB, repo domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, &repository{db: tx})
	})
}

func (r *repository) CreateSale(ctx context.Context, sale *domain.Sale) error {
	// Lines are inserted separately so their stock movements stay in step.
	return r.db.WithContext(ctx).Omit("Products").Create(sale).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []domain.SaleProduct) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) DeleteLines(ctx context.Context, saleID int64) error {
	return r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Delete(&domain.SaleProduct{}).Error
}

func (r *repository) GetLines(ctx context.Context, saleID int64) ([]domain.SaleProduct, error) {
	var lines []domain.SaleProduct
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Find(&lines).Error
	return lines, err
}

func (r *repository) Update(ctx context.Context, orgID, id int64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("org_id = ? AND id = ?", orgID, id).Delete(&domain.Sale{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrSaleNotFound
		}
		// sqlite builds without foreign_keys=on do not cascade.
		return tx.Where("sale_id = ?", id).Delete(&domain.SaleProduct{}).Error
	})
}

func (r *repository) FindByID(ctx context.Context, orgID, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) List(ctx context.Context, orgID int64, opts ...option.Option) ([]domain.SaleRow, error) {
	stmt := r.db.WithContext(ctx).
		Table("sales").
		Select("sales.*, c.name AS customer_name").
		Joins("JOIN customers c ON c.id = sales.customer_id").
		Where("sales.org_id = ?", orgID)

	var rows []domain.SaleRow
	err := option.Apply(stmt, opts...).Scan(&rows).Error
	return rows, err
}

func (r *repository) CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error) {
	stmt := r.db.WithContext(ctx).
		Table("sales").
		Joins("JOIN customers c ON c.id = sales.customer_id").
		Where("sales.org_id = ?", orgID)
	var count int64
	err := option.Apply(stmt, opts...).Count(&count).Error
	return count, err
}

func (r *repository) Count(ctx context.Context, orgID int64, since, until *time.Time) (int64, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.Sale{}).Where("org_id = ?", orgID)
	if since != nil {
		stmt = stmt.Where("created_at >= ?", *since)
	}
	if until != nil {
		stmt = stmt.Where("created_at <= ?", *until)
	}
	var count int64
	err := stmt.Count(&count).Error
	return count, err
}

func (r *repository) CompletedTotals(ctx context.Context, orgID int64, since, until *time.Time) (domain.Totals, error) {
	var totals domain.Totals

	// Line aggregates and per-sale shipping are summed separately so the
	// join does not multiply shipping by line count.
	lineStmt := r.db.WithContext(ctx).
		Table("sale_products sp").
		Select("COALESCE(SUM(sp.price * sp.qty), 0) AS revenue, COALESCE(SUM(sp.unit_price * sp.qty), 0) AS cost").
		Joins("JOIN sales s ON s.id = sp.sale_id").
		Where("s.org_id = ? AND s.status = ?", orgID, domain.StatusCompleted)
	if since != nil {
		lineStmt = lineStmt.Where("s.created_at >= ?", *since)
	}
	if until != nil {
		lineStmt = lineStmt.Where("s.created_at <= ?", *until)
	}
	if err := lineStmt.Scan(&totals).Error; err != nil {
		return domain.Totals{}, err
	}

	shippingStmt := r.db.WithContext(ctx).
		Model(&domain.Sale{}).
		Select("COALESCE(SUM(shipping_cost), 0)").
		Where("org_id = ? AND status = ?", orgID, domain.StatusCompleted)
	if since != nil {
		shippingStmt = shippingStmt.Where("created_at >= ?", *since)
	}
	if until != nil {
		shippingStmt = shippingStmt.Where("created_at <= ?", *until)
	}
	var shipping float64
	if err := shippingStmt.Scan(&shipping).Error; err != nil {
		return domain.Totals{}, err
	}

	totals.Revenue += shipping
	return totals, nil
}
