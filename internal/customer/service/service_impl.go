package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/customer/domain"
	"github.com/vendly/vendly/internal/retry"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"go.uber.org/zap"
)

var listOrderColumns = map[string]bool{
	"created_at": true,
	"name":       true,
	"phone":      true,
}

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	subs  subscriptiondomain.Service
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, subs subscriptiondomain.Service, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("customer.service"),
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
		filters = append(filters, option.WithOrGroup([]option.Filter{
			{Column: "name", Op: option.OpILike, Value: search},
			{Column: "phone", Op: option.OpILike, Value: search},
		}))
	}
	if status := strings.TrimSpace(req.TrustStatus); status != "" {
		if !domain.ValidTrustStatus(status) {
			return nil, domain.ErrInvalidTrustStatus
		}
		filters = append(filters, option.WithFilter(option.Filter{Column: "trust_status", Op: option.OpEq, Value: status}))
	}
	opts := append(append([]option.Option{}, filters...),
		option.WithOrder(req.Order, listOrderColumns),
		option.WithPage(req.Page),
	)

	var (
		items []domain.Customer
		total int64
	)
	// The total shares the list filters so page math holds under search.
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

func (s *service) Get(ctx context.Context, orgID, id int64) (*domain.Customer, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) Create(ctx context.Context, orgID int64, req domain.UpsertRequest) (*domain.Customer, error) {
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
	if !ent.CanAddCustomers(count) {
		return nil, domain.ErrCustomerLimit
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:          s.genID.Generate().Int64(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(req.Name),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       req.Email,
		Address:     req.Address,
		MapURL:      req.MapURL,
		Notes:       req.Notes,
		TrustStatus: req.TrustStatus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *service) Update(ctx context.Context, orgID, id int64, req domain.UpsertRequest) (*domain.Customer, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"name":         strings.TrimSpace(req.Name),
		"phone":        strings.TrimSpace(req.Phone),
		"email":        req.Email,
		"address":      req.Address,
		"map_url":      req.MapURL,
		"notes":        req.Notes,
		"trust_status": req.TrustStatus,
		"updated_at":   time.Now().UTC(),
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

func validate(req *domain.UpsertRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return domain.ErrInvalidName
	}
	if req.TrustStatus == "" {
		req.TrustStatus = domain.TrustStatusTrusted
	}
	if !domain.ValidTrustStatus(req.TrustStatus) {
		return domain.ErrInvalidTrustStatus
	}
	return nil
}
