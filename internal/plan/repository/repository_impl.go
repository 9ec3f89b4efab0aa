package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/vendly/vendly/internal/plan/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("amount ASC").Find(&plans).Error
	return plans, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	return r.wrap(&plan, err)
}

func (r *repository) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.db.WithContext(ctx).Where("name = ?", strings.ToLower(strings.TrimSpace(name))).First(&plan).Error
	return r.wrap(&plan, err)
}

func (r *repository) GetByStripePriceID(ctx context.Context, priceID string) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.db.WithContext(ctx).Where("stripe_price_id = ?", priceID).First(&plan).Error
	return r.wrap(&plan, err)
}

func (r *repository) GetByStripeProductID(ctx context.Context, productID string) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.db.WithContext(ctx).Where("stripe_product_id = ?", productID).First(&plan).Error
	return r.wrap(&plan, err)
}

func (r *repository) Create(ctx context.Context, plan *domain.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Plan{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Plan{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func (r *repository) wrap(plan *domain.Plan, err error) (*domain.Plan, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}
