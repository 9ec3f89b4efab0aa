package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) Update(ctx context.Context, orgID, id int64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tx := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Product{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, orgID, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDs(ctx context.Context, orgID int64, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&products).Error
	return products, err
}

func (r *repository) List(ctx context.Context, orgID int64, opts ...option.Option) ([]domain.Product, error) {
	var products []domain.Product
	stmt := r.db.WithContext(ctx).Model(&domain.Product{}).Where("org_id = ?", orgID)
	err := option.Apply(stmt, opts...).Find(&products).Error
	return products, err
}

func (r *repository) CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error) {
	var count int64
	stmt := r.db.WithContext(ctx).Model(&domain.Product{}).Where("org_id = ?", orgID)
	err := option.Apply(stmt, opts...).Count(&count).Error
	return count, err
}

func (r *repository) Count(ctx context.Context, orgID int64, since, until *time.Time) (int64, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.Product{}).Where("org_id = ?", orgID)
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

func (r *repository) InStockCount(ctx context.Context, orgID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("org_id = ? AND current_stock > 0", orgID).
		Count(&count).Error
	return count, err
}

func (r *repository) AdjustStock(ctx context.Context, orgID, id int64, delta int) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(map[string]any{
			"current_stock": gorm.Expr("current_stock + ?", delta),
			"updated_at":    time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *repository) MostSoldProducts(ctx context.Context, orgID int64, since, until *time.Time, limit int) ([]domain.MostSoldProduct, error) {
	if limit <= 0 {
		limit = 3
	}

	stmt := r.db.WithContext(ctx).
		Table("sale_products sp").
		Select("sp.product_id AS product_id, p.name AS name, SUM(sp.qty) AS total_qty").
		Joins("JOIN sales s ON s.id = sp.sale_id").
		Joins("JOIN products p ON p.id = sp.product_id").
		Where("s.org_id = ? AND s.status = ? AND sp.product_id IS NOT NULL", orgID, "completed")
	if since != nil {
		stmt = stmt.Where("s.created_at >= ?", *since)
	}
	if until != nil {
		stmt = stmt.Where("s.created_at <= ?", *until)
	}

	var rows []domain.MostSoldProduct
	err := stmt.
		Group("sp.product_id, p.name").
		Order("total_qty DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
