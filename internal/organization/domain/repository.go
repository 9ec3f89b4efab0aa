package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type OrganizationListItem struct {
	ID        int64
	Name      string
	Slug      string
	Role      string
	CreatedAt time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	GetByID(ctx context.Context, id int64) (*Organization, error)
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*Organization, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	AddMember(ctx context.Context, member Member) error
	ListOrganizationsByUser(ctx context.Context, userID int64) ([]OrganizationListItem, error)
	GetMemberRole(ctx context.Context, orgID, userID int64) (string, error)
	IsMember(ctx context.Context, orgID, userID int64) (bool, error)
}
