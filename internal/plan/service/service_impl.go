package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/plan/domain"
	"go.uber.org/zap"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("plan.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) List(ctx context.Context) ([]domain.Plan, error) {
	return s.repo.List(ctx)
}

func (s *service) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *service) SyncPrice(ctx context.Context, req domain.SyncPriceRequest) error {
	priceID := strings.TrimSpace(req.StripePriceID)
	if priceID == "" {
		return nil
	}

	plan, err := s.repo.GetByStripePriceID(ctx, priceID)
	if errors.Is(err, domain.ErrPlanNotFound) && strings.TrimSpace(req.StripeProductID) != "" {
		plan, err = s.repo.GetByStripeProductID(ctx, strings.TrimSpace(req.StripeProductID))
	}
	if errors.Is(err, domain.ErrPlanNotFound) {
		s.log.Debug("ignoring price for unknown plan", zap.String("stripe_price_id", priceID))
		return nil
	}
	if err != nil {
		return err
	}

	fields := map[string]any{
		"stripe_price_id": priceID,
		"amount":          req.Amount,
		"active":          req.Active,
		"updated_at":      time.Now().UTC(),
	}
	if currency := strings.ToLower(strings.TrimSpace(req.Currency)); currency != "" {
		fields["currency"] = currency
	}
	if interval := strings.ToLower(strings.TrimSpace(req.Interval)); interval != "" {
		fields["billing_interval"] = interval
	}
	if productID := strings.TrimSpace(req.StripeProductID); productID != "" {
		fields["stripe_product_id"] = productID
	}

	return s.repo.UpdateFields(ctx, plan.ID, fields)
}

func (s *service) SyncProduct(ctx context.Context, req domain.SyncProductRequest) error {
	productID := strings.TrimSpace(req.StripeProductID)
	if productID == "" {
		return nil
	}

	plan, err := s.repo.GetByStripeProductID(ctx, productID)
	if errors.Is(err, domain.ErrPlanNotFound) {
		// Product names from the provider map onto local plan names.
		plan, err = s.repo.GetByName(ctx, req.Name)
	}
	if errors.Is(err, domain.ErrPlanNotFound) {
		now := time.Now().UTC()
		created := &domain.Plan{
			ID:              s.genID.Generate().Int64(),
			Name:            strings.ToLower(strings.TrimSpace(req.Name)),
			Description:     strings.TrimSpace(req.Description),
			StripeProductID: &productID,
			Active:          req.Active,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		s.log.Info("creating plan for provider product", zap.String("stripe_product_id", productID))
		return s.repo.Create(ctx, created)
	}
	if err != nil {
		return err
	}

	return s.repo.UpdateFields(ctx, plan.ID, map[string]any{
		"stripe_product_id": productID,
		"name":              strings.ToLower(strings.TrimSpace(req.Name)),
		"description":       strings.TrimSpace(req.Description),
		"active":            req.Active,
		"updated_at":        time.Now().UTC(),
	})
}

// RemoveProduct drops the plan row for a deleted provider product.
// Subscriptions still pointing at it fall back to freemium when their
// entitlements are next resolved.
func (s *service) RemoveProduct(ctx context.Context, stripeProductID string) error {
	productID := strings.TrimSpace(stripeProductID)
	if productID == "" {
		return nil
	}

	plan, err := s.repo.GetByStripeProductID(ctx, productID)
	if errors.Is(err, domain.ErrPlanNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, plan.ID)
}
