package service

import (
	"context"

	customerdomain "github.com/vendly/vendly/internal/customer/domain"
	"github.com/vendly/vendly/internal/dashboard/domain"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/internal/retry"
	saledomain "github.com/vendly/vendly/internal/sale/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const topPerformerLimit = 3

type service struct {
	log       *zap.Logger
	sales     saledomain.Repository
	customers customerdomain.Repository
	products  productdomain.Repository
}

func New(log *zap.Logger, sales saledomain.Repository, customers customerdomain.Repository, products productdomain.Repository) domain.Service {
	return &service{
		log:       log.Named("dashboard.service"),
		sales:     sales,
		customers: customers,
		products:  products,
	}
}

func (s *service) Summary(ctx context.Context, orgID int64, req domain.SummaryRequest) (*domain.Summary, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	var summary domain.Summary
	g, gctx := errgroup.WithContext(ctx)

	// Each aggregate is an independent read, retried on transient
	// failure so one flaky query does not blank the whole dashboard.
	read := func(fn func(ctx context.Context) error) {
		g.Go(func() error {
			return retry.Do(gctx, retry.DefaultPolicy, fn)
		})
	}

	read(func(ctx context.Context) error {
		count, err := s.sales.Count(ctx, orgID, req.Since, req.Until)
		summary.TotalSales = count
		return err
	})
	read(func(ctx context.Context) error {
		count, err := s.customers.Count(ctx, orgID, req.Since, req.Until)
		summary.TotalCustomers = count
		return err
	})
	read(func(ctx context.Context) error {
		count, err := s.products.Count(ctx, orgID, req.Since, req.Until)
		summary.TotalProducts = count
		return err
	})
	read(func(ctx context.Context) error {
		count, err := s.products.InStockCount(ctx, orgID)
		summary.ProductsInStock = count
		return err
	})
	read(func(ctx context.Context) error {
		totals, err := s.sales.CompletedTotals(ctx, orgID, req.Since, req.Until)
		summary.Revenue = totals.Revenue
		summary.Cost = totals.Cost
		return err
	})
	read(func(ctx context.Context) error {
		best, err := s.customers.BestCustomers(ctx, orgID, req.Since, req.Until, topPerformerLimit)
		summary.BestCustomers = best
		return err
	})
	read(func(ctx context.Context) error {
		sold, err := s.products.MostSoldProducts(ctx, orgID, req.Since, req.Until, topPerformerLimit)
		summary.MostSoldProducts = sold
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Profit = summary.Revenue - summary.Cost
	return &summary, nil
}
