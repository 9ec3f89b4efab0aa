package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	"github.com/vendly/vendly/internal/retry"
	"github.com/vendly/vendly/internal/subscription/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"go.uber.org/zap"
)

// The list joins plans, so exposed order columns map to qualified ones.
var listOrderColumns = map[string]string{
	"created_at": "subscriptions.created_at",
	"status":     "subscriptions.status",
	"plan_name":  "p.name",
}

var qualifiedOrderColumns = func() map[string]bool {
	m := make(map[string]bool, len(listOrderColumns))
	for _, qualified := range listOrderColumns {
		m[qualified] = true
	}
	return m
}()

type service struct {
	log      *zap.Logger
	repo     domain.Repository
	planRepo plandomain.Repository
	genID    *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, planRepo plandomain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:      log.Named("subscription.service"),
		repo:     repo,
		planRepo: planRepo,
		genID:    genID,
	}
}

func (s *service) List(ctx context.Context, orgID int64, req domain.ListRequest) (*domain.ListResponse, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	filters := []option.Option{}
	if search := strings.TrimSpace(req.Search); search != "" {
		filters = append(filters, option.WithFilter(option.Filter{Column: "p.name", Op: option.OpILike, Value: search}))
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		if !domain.ValidStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		filters = append(filters, option.WithFilter(option.Filter{Column: "subscriptions.status", Op: option.OpEq, Value: status}))
	}
	opts := append(append([]option.Option{}, filters...),
		option.WithOrder(qualifyOrder(req.Order), qualifiedOrderColumns),
		option.WithPage(req.Page),
	)

	var (
		items []domain.SubscriptionRow
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

func qualifyOrder(order *option.Order) *option.Order {
	fallback := &option.Order{Column: "subscriptions.created_at", Direction: option.Desc}
	if order == nil {
		return fallback
	}
	qualified, ok := listOrderColumns[order.Column]
	if !ok {
		return fallback
	}
	return &option.Order{Column: qualified, Direction: order.Direction}
}

func (s *service) GetForOrg(ctx context.Context, orgID int64) (*domain.Subscription, error) {
	sub, err := s.repo.GetByOrg(ctx, orgID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return s.provisionFreemium(ctx, orgID)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *service) ActivatePremium(ctx context.Context, req domain.ActivatePremiumRequest) error {
	premium, err := s.planRepo.GetByName(ctx, plandomain.PlanPremium)
	if err != nil {
		return err
	}

	sub, err := s.GetForOrg(ctx, req.OrgID)
	if err != nil {
		return err
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusActive
	}

	s.log.Info("activating premium subscription",
		zap.Int64("org_id", req.OrgID),
		zap.String("stripe_subscription_id", req.StripeSubscriptionID),
	)
	return s.repo.UpdateFields(ctx, sub.ID, map[string]any{
		"plan_id":                premium.ID,
		"stripe_subscription_id": strings.TrimSpace(req.StripeSubscriptionID),
		"status":                 status,
		"current_period_start":   req.CurrentPeriodStart,
		"current_period_end":     req.CurrentPeriodEnd,
		"cancel_at_period_end":   false,
		"updated_at":             time.Now().UTC(),
	})
}

func (s *service) SyncPeriod(ctx context.Context, req domain.SyncPeriodRequest) error {
	subID := strings.TrimSpace(req.StripeSubscriptionID)
	if subID == "" {
		return nil
	}

	sub, err := s.repo.GetByStripeSubscriptionID(ctx, subID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		s.log.Debug("ignoring period sync for unknown subscription", zap.String("stripe_subscription_id", subID))
		return nil
	}
	if err != nil {
		return err
	}

	return s.repo.UpdateFields(ctx, sub.ID, map[string]any{
		"status":               strings.TrimSpace(req.Status),
		"current_period_start": req.CurrentPeriodStart,
		"current_period_end":   req.CurrentPeriodEnd,
		"cancel_at_period_end": req.CancelAtPeriodEnd,
		"updated_at":           time.Now().UTC(),
	})
}

func (s *service) RevertToFreemium(ctx context.Context, orgID int64) error {
	freemium, err := s.planRepo.GetByName(ctx, plandomain.PlanFreemium)
	if err != nil {
		return err
	}

	sub, err := s.GetForOrg(ctx, orgID)
	if err != nil {
		return err
	}

	s.log.Info("reverting subscription to freemium", zap.Int64("org_id", orgID))
	return s.repo.UpdateFields(ctx, sub.ID, map[string]any{
		"plan_id":                freemium.ID,
		"stripe_subscription_id": nil,
		"status":                 domain.StatusActive,
		"current_period_start":   time.Now().UTC(),
		"current_period_end":     nil,
		"cancel_at_period_end":   false,
		"updated_at":             time.Now().UTC(),
	})
}

func (s *service) Entitlements(ctx context.Context, orgID int64) (*domain.Entitlements, error) {
	sub, err := s.GetForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	plan := sub.Plan
	if plan == nil {
		plan, err = s.planRepo.GetByID(ctx, sub.PlanID)
		if errors.Is(err, plandomain.ErrPlanNotFound) {
			// The plan row was removed upstream; the subscription
			// degrades to freemium limits rather than erroring.
			plan, err = s.planRepo.GetByName(ctx, plandomain.PlanFreemium)
		}
		if err != nil {
			return nil, err
		}
	}

	return &domain.Entitlements{
		PlanName:     plan.Name,
		MaxProducts:  plan.MaxProducts,
		MaxCustomers: plan.MaxCustomers,
	}, nil
}

func (s *service) provisionFreemium(ctx context.Context, orgID int64) (*domain.Subscription, error) {
	freemium, err := s.planRepo.GetByName(ctx, plandomain.PlanFreemium)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		ID:                 s.genID.Generate().Int64(),
		OrgID:              orgID,
		PlanID:             freemium.ID,
		Status:             domain.StatusActive,
		CurrentPeriodStart: &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	sub.Plan = freemium
	return sub, nil
}
