package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vendly/vendly/internal/customer/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) Update(ctx context.Context, orgID, id int64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tx := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Customer{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, orgID, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, orgID int64, opts ...option.Option) ([]domain.Customer, error) {
	var customers []domain.Customer
	stmt := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("org_id = ?", orgID)
	err := option.Apply(stmt, opts...).Find(&customers).Error
	return customers, err
}

func (r *repository) CountMatching(ctx context.Context, orgID int64, opts ...option.Option) (int64, error) {
	var count int64
	stmt := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("org_id = ?", orgID)
	err := option.Apply(stmt, opts...).Count(&count).Error
	return count, err
}

func (r *repository) Count(ctx context.Context, orgID int64, since, until *time.Time) (int64, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("org_id = ?", orgID)
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

func (r *repository) BestCustomers(ctx context.Context, orgID int64, since, until *time.Time, limit int) ([]domain.BestCustomer, error) {
	if limit <= 0 {
		limit = 3
	}

	stmt := r.db.WithContext(ctx).
		Table("sales s").
		Select("s.customer_id AS customer_id, c.name AS name, COUNT(s.id) AS sale_count").
		Joins("JOIN customers c ON c.id = s.customer_id").
		Where("s.org_id = ? AND s.status = ? AND s.customer_id IS NOT NULL", orgID, "completed")
	if since != nil {
		stmt = stmt.Where("s.created_at >= ?", *since)
	}
	if until != nil {
		stmt = stmt.Where("s.created_at <= ?", *until)
	}

	var rows []domain.BestCustomer
	err := stmt.
		Group("s.customer_id, c.name").
		Order("sale_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
