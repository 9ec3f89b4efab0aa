package repository

import (
	"context"
	"errors"

	"github.com/vendly/vendly/internal/subscription/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repository) List(ctx context.Context, orgID int64, opts ...option.Option) ([]domain.SubscriptionRow, error) {
	stmt := r.db.WithContext(ctx).
		Table("subscriptions").
		Select("subscriptions.*, p.name AS plan_name").
		Joins("JOIN plans p ON p.id = subscriptions.plan_id").
		Where("subscriptions.org_id = ?", orgID)

	var rows []domain.SubscriptionRow
	err := option.Apply(stmt, opts...).Scan(&rows).Error
	return rows, err
}

func (r *repository) CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error) {
	stmt := r.db.WithContext(ctx).
		Table("subscriptions").
		Joins("JOIN plans p ON p.id = subscriptions.plan_id").
		Where("subscriptions.org_id = ?", orgID)
	var count int64
	err := option.Apply(stmt, opts...).Count(&count).Error
	return count, err
}

func (r *repository) GetByOrg(ctx context.Context, orgID int64) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Subscription{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}
