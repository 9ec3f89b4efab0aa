package domain

import (
	"context"
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Service interface {
	Create(ctx context.Context, userID int64, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id int64) (*OrganizationResponse, error)
	GetBySlug(ctx context.Context, slug string) (*OrganizationResponse, error)
	ListOrganizationsByUser(ctx context.Context, userID int64) ([]OrganizationListResponseItem, error)
	UpdateSettings(ctx context.Context, orgID int64, req UpdateSettingsRequest) (*OrganizationResponse, error)
	MemberRole(ctx context.Context, orgID, userID int64) (string, error)
	IsMember(ctx context.Context, orgID, userID int64) (bool, error)
	AddMember(ctx context.Context, orgID, userID int64, role string) error
}

type CreateOrganizationRequest struct {
	Name string
}

type UpdateSettingsRequest struct {
	Name                      *string
	PublicProductsPageEnabled *bool
}

type OrganizationResponse struct {
	ID                        int64          `json:"id,string"`
	Name                      string         `json:"name"`
	Slug                      string         `json:"slug"`
	PublicProductsPageEnabled bool           `json:"public_products_page_enabled"`
	FeatureFlags              map[string]any `json:"feature_flags,omitempty"`
	CreatedAt                 time.Time      `json:"created_at"`
}

type OrganizationListResponseItem struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrNotMember           = errors.New("not_member")
	ErrForbidden           = errors.New("forbidden")
)

// ValidRole reports whether role is one of the assignable membership roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
