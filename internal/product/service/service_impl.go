package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/internal/retry"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"go.uber.org/zap"
)

var listOrderColumns = map[string]bool{
	"created_at":    true,
	"name":          true,
	"retail_price":  true,
	"current_stock": true,
}

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	subs  subscriptiondomain.Service
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, subs subscriptiondomain.Service, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("product.service"),
		repo:  repo,
		subs:  subs,
		genID: genID,
	}
}

func (s *service) List(ctx context.Context, orgID int64, req domain.ListRequest) (*domain.ListResponse, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	filters := []option.Option{}
	if search := strings.TrimSpace(req.Search); search != "" {
		filters = append(filters, option.WithFilter(option.Filter{Column: "name", Op: option.OpILike, Value: search}))
	}
	opts := append(append([]option.Option{}, filters...),
		option.WithOrder(req.Order, listOrderColumns),
		option.WithPage(req.Page),
	)

	var (
		items []domain.Product
		total int64
	)
	err := retry.Do(ctx, retry.DefaultPolicy, func(ctx context.Context) error {
		var err error
		if items, err = s.repo.List(ctx, orgID, opts...); err != nil {
			return err
		}
		total, err = s.repo.CountMatching(ctx, orgID, filters...)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &domain.ListResponse{Items: items, Total: total, Page: req.Page}, nil
}

func (s *service) Get(ctx context.Context, orgID, id int64) (*domain.Product, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) Create(ctx context.Context, orgID int64, req domain.UpsertRequest) (*domain.Product, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, orgID, nil, nil)
	if err != nil {
		return nil, err
	}
	ent, err := s.subs.Entitlements(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !ent.CanAddProducts(count) {
		return nil, domain.ErrProductLimit
	}

	stock := 0
	if req.CurrentStock != nil {
		stock = *req.CurrentStock
	}
	now := time.Now().UTC()
	product := &domain.Product{
		ID:           s.genID.Generate().Int64(),
		OrgID:        orgID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		UnitPrice:    req.UnitPrice,
		RetailPrice:  req.RetailPrice,
		CurrentStock: stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, orgID, id int64, req domain.UpsertRequest) (*domain.Product, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"name":         strings.TrimSpace(req.Name),
		"description":  req.Description,
		"image_url":    req.ImageURL,
		"unit_price":   req.UnitPrice,
		"retail_price": req.RetailPrice,
		"updated_at":   time.Now().UTC(),
	}
	if req.CurrentStock != nil {
		fields["current_stock"] = *req.CurrentStock
	}
	if err := s.repo.Update(ctx, orgID, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) Delete(ctx context.Context, orgID, id int64) error {
	if orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	return s.repo.Delete(ctx, orgID, id)
}

func (s *service) Count(ctx context.Context, orgID int64) (int64, error) {
	if orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	return s.repo.Count(ctx, orgID, nil, nil)
}

func (s *service) InStockCount(ctx context.Context, orgID int64) (int64, error) {
	if orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	return s.repo.InStockCount(ctx, orgID)
}

func validate(req *domain.UpsertRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return domain.ErrInvalidName
	}
	if req.UnitPrice < 0 || req.RetailPrice < 0 {
		return domain.ErrInvalidPrice
	}
	return nil
}
