package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/vendly/vendly/internal/organization/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrganization(ctx context.Context, org domain.Organization) error {
	return r.db.WithContext(ctx).Create(&org).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidOrganization
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(slug)).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidOrganization
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", strings.TrimSpace(customerID)).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidOrganization
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Organization{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrInvalidOrganization
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, member domain.Member) error {
	return r.db.WithContext(ctx).Create(&member).Error
}

func (r *repository) ListOrganizationsByUser(ctx context.Context, userID int64) ([]domain.OrganizationListItem, error) {
	var items []domain.OrganizationListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT o.id, o.name, o.slug, m.role, o.created_at
		 FROM organizations o
		 JOIN organization_members m ON m.org_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY o.created_at ASC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) GetMemberRole(ctx context.Context, orgID, userID int64) (string, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrNotMember
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (r *repository) IsMember(ctx context.Context, orgID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
