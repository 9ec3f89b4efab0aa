package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/vendly/vendly/internal/organization/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(db *gorm.DB, log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		db:    db,
		log:   log.Named("organization.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, userID int64, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	orgID := s.genID.Generate().Int64()
	org := domain.Organization{
		ID:        orgID,
		Name:      name,
		Slug:      s.uniqueSlug(ctx, name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		member := domain.Member{
			ID:        s.genID.Generate().Int64(),
			OrgID:     orgID,
			UserID:    userID,
			Role:      domain.RoleAdmin,
			CreatedAt: now,
		}
		return repo.AddMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organization created", zap.Int64("org_id", orgID), zap.Int64("user_id", userID))
	return toResponse(&org), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*domain.OrganizationResponse, error) {
	if id == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(org), nil
}

func (s *service) GetBySlug(ctx context.Context, rawSlug string) (*domain.OrganizationResponse, error) {
	if strings.TrimSpace(rawSlug) == "" {
		return nil, domain.ErrInvalidOrganization
	}
	org, err := s.repo.GetBySlug(ctx, rawSlug)
	if err != nil {
		return nil, err
	}
	return toResponse(org), nil
}

func (s *service) ListOrganizationsByUser(ctx context.Context, userID int64) ([]domain.OrganizationListResponseItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.ListOrganizationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.OrganizationListResponseItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.OrganizationListResponseItem{
			ID:        item.ID,
			Name:      item.Name,
			Slug:      item.Slug,
			Role:      item.Role,
			CreatedAt: item.CreatedAt,
		})
	}

	return resp, nil
}

func (s *service) UpdateSettings(ctx context.Context, orgID int64, req domain.UpdateSettingsRequest) (*domain.OrganizationResponse, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.PublicProductsPageEnabled != nil {
		fields["public_products_page_enabled"] = *req.PublicProductsPageEnabled
	}

	if err := s.repo.Update(ctx, orgID, fields); err != nil {
		return nil, err
	}

	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return toResponse(org), nil
}

func (s *service) MemberRole(ctx context.Context, orgID, userID int64) (string, error) {
	if orgID == 0 {
		return "", domain.ErrInvalidOrganization
	}
	if userID == 0 {
		return "", domain.ErrInvalidUser
	}
	return s.repo.GetMemberRole(ctx, orgID, userID)
}

func (s *service) IsMember(ctx context.Context, orgID, userID int64) (bool, error) {
	if orgID == 0 || userID == 0 {
		return false, nil
	}
	return s.repo.IsMember(ctx, orgID, userID)
}

func (s *service) AddMember(ctx context.Context, orgID, userID int64, role string) error {
	if orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	if userID == 0 {
		return domain.ErrInvalidUser
	}
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}

	return s.repo.AddMember(ctx, domain.Member{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
}

// uniqueSlug appends a short numeric suffix when the base slug is taken.
func (s *service) uniqueSlug(ctx context.Context, name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; i < 100; i++ {
		if _, err := s.repo.GetBySlug(ctx, candidate); err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%d", base, s.genID.Generate().Int64()%10000)
}

func toResponse(org *domain.Organization) *domain.OrganizationResponse {
	return &domain.OrganizationResponse{
		ID:                        org.ID,
		Name:                      org.Name,
		Slug:                      org.Slug,
		PublicProductsPageEnabled: org.PublicProductsPageEnabled,
		FeatureFlags:              org.FeatureFlags,
		CreatedAt:                 org.CreatedAt,
	}
}
