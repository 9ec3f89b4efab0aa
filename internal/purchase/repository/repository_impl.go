package repository

import (
	"context"
	"errors"

	"github.com/vendly/vendly/internal/purchase/domain"
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

func (r *repository) Create(ctx context.Context, purchase *domain.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repository) Update(ctx context.Context, orgID, id int64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrPurchaseNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tx := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Purchase{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrPurchaseNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, orgID, id int64) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) List(ctx context.Context, orgID int64, opts ...option.Option) ([]domain.PurchaseRow, error) {
	stmt := r.db.WithContext(ctx).
		Table("purchases").
		Select("purchases.*, p.name AS product_name").
		Joins("JOIN products p ON p.id = purchases.product_id").
		Where("purchases.org_id = ?", orgID)

	var rows []domain.PurchaseRow
	err := option.Apply(stmt, opts...).Scan(&rows).Error
	return rows, err
}

func (r *repository) CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error) {
	stmt := r.db.WithContext(ctx).
		Table("purchases").
		Joins("JOIN products p ON p.id = purchases.product_id").
		Where("purchases.org_id = ?", orgID)
	var count int64
	err := option.Apply(stmt, opts...).Count(&count).Error
	return count, err
}

func (r *repository) Count(ctx context.Context, orgID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}
