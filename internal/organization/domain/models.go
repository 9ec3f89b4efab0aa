// Package domain contains persistence models for the org service.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Organization represents a tenant.
type Organization struct {
	ID                        int64             `gorm:"primaryKey" json:"id"`
	Name                      string            `gorm:"type:text;not null" json:"name"`
	Slug                      string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	PublicProductsPageEnabled bool              `gorm:"column:public_products_page_enabled;not null;default:false" json:"public_products_page_enabled"`
	FeatureFlags              datatypes.JSONMap `gorm:"column:feature_flags;type:jsonb;not null;default:'{}'" json:"feature_flags"`
	StripeCustomerID          *string           `gorm:"column:stripe_customer_id;type:text" json:"stripe_customer_id,omitempty"`
	CreatedAt                 time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                 time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Member represents membership of a user in an organization.
type Member struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OrgID     int64     `gorm:"column:org_id;not null;index;uniqueIndex:ux_org_user,priority:1" json:"org_id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:ux_org_user,priority:2" json:"user_id"`
	Role      string    `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "organization_members" }
