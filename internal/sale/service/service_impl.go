package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/config"
	"github.com/vendly/vendly/internal/observability/metrics"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/internal/retry"
	"github.com/vendly/vendly/internal/sale/domain"
	"github.com/vendly/vendly/pkg/db/option"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The list joins customers, so exposed order columns map to qualified ones.
var listOrderColumns = map[string]string{
	"created_at":    "sales.created_at",
	"sale_date":     "sales.sale_date",
	"status":        "sales.status",
	"customer_name": "c.name",
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
	products productdomain.Repository
	metrics  *metrics.Metrics
	genID    *snowflake.Node
	lowStock int
}

func New(log *zap.Logger, cfg config.Config, repo domain.Repository, products productdomain.Repository, m *metrics.Metrics, genID *snowflake.Node) domain.Service {
	return &service{
		log:      log.Named("sale.service"),
		repo:     repo,
		products: products,
		metrics:  m,
		genID:    genID,
		lowStock: cfg.LowStockThreshold,
	}
}

func (s *service) List(ctx context.Context, orgID int64, req domain.ListRequest) (*domain.ListResponse, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	filters := []option.Option{}
	if search := strings.TrimSpace(req.Search); search != "" {
		filters = append(filters, option.WithFilter(option.Filter{Column: "c.name", Op: option.OpILike, Value: search}))
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		if !domain.ValidStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		filters = append(filters, option.WithFilter(option.Filter{Column: "sales.status", Op: option.OpEq, Value: status}))
	}
	opts := append(append([]option.Option{}, filters...),
		option.WithOrder(qualifyOrder(req.Order), qualifiedOrderColumns),
		option.WithPage(req.Page),
	)

	var (
		items []domain.SaleRow
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

func (s *service) Get(ctx context.Context, orgID, id int64) (*domain.Sale, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) Create(ctx context.Context, orgID int64, req domain.UpsertRequest) (*domain.MutationResult, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if req.Status == "" {
		req.Status = domain.StatusInProgress
	}
	if !domain.ValidStatus(req.Status) {
		return nil, domain.ErrInvalidStatus
	}
	if len(req.Products) == 0 {
		return nil, domain.ErrEmptySale
	}
	for _, line := range req.Products {
		if line.Qty <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	now := time.Now().UTC()
	saleDate := now
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}
	sale := &domain.Sale{
		ID:           s.genID.Generate().Int64(),
		OrgID:        orgID,
		CustomerID:   req.CustomerID,
		Status:       req.Status,
		SaleDate:     saleDate,
		ShippingCost: req.ShippingCost,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	lines, err := s.buildLines(ctx, orgID, sale.ID, req.Products, now)
	if err != nil {
		return nil, err
	}

	// One transaction covers the sale row, its lines and every stock
	// movement: either all of it lands or none of it does.
	err = s.repo.Transaction(ctx, func(tx *gorm.DB, repo domain.Repository) error {
		if err := repo.CreateSale(ctx, sale); err != nil {
			return err
		}
		if err := repo.CreateLines(ctx, lines); err != nil {
			return err
		}
		if sale.Status == domain.StatusCancelled {
			return nil
		}
		return s.adjustStock(ctx, tx, orgID, lines, -1)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSaleTransition("none", sale.Status)
	if sale.Status != domain.StatusCancelled {
		s.metrics.RecordStockAdjustment("debit", "sale")
	}

	sale.Products = lines
	warnings, err := s.lowStockWarnings(ctx, orgID, lines)
	if err != nil {
		s.log.Warn("low stock scan failed", zap.Error(err))
	}
	return &domain.MutationResult{Sale: sale, LowStock: warnings}, nil
}

func (s *service) Update(ctx context.Context, orgID, id int64, req domain.UpsertRequest) (*domain.MutationResult, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if !domain.ValidStatus(req.Status) {
		return nil, domain.ErrInvalidStatus
	}

	existing, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	// Cancelled is terminal: its stock was already credited back, so
	// any transition out of it would commit stock the sale no longer
	// accounts for.
	if existing.Status == domain.StatusCancelled && req.Status != domain.StatusCancelled {
		return nil, domain.ErrSaleCancelled
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"customer_id":   req.CustomerID,
		"status":        req.Status,
		"shipping_cost": req.ShippingCost,
		"notes":         req.Notes,
		"updated_at":    now,
	}
	if req.SaleDate != nil {
		fields["sale_date"] = *req.SaleDate
	}

	var lines []domain.SaleProduct
	if req.Status == domain.StatusInProgress {
		if len(req.Products) == 0 {
			return nil, domain.ErrEmptySale
		}
		for _, line := range req.Products {
			if line.Qty <= 0 {
				return nil, domain.ErrInvalidQuantity
			}
		}
		lines, err = s.buildLines(ctx, orgID, id, req.Products, now)
		if err != nil {
			return nil, err
		}
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB, repo domain.Repository) error {
		if err := repo.Update(ctx, orgID, id, fields); err != nil {
			return err
		}
		switch req.Status {
		case domain.StatusCompleted:
			// Stock was already debited when the sale was created or
			// last edited in progress.
			return nil
		case domain.StatusInProgress:
			// Replace the lines: return the old quantities, then take
			// the new ones.
			if err := s.adjustStock(ctx, tx, orgID, existing.Products, +1); err != nil {
				return err
			}
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			if err := repo.CreateLines(ctx, lines); err != nil {
				return err
			}
			return s.adjustStock(ctx, tx, orgID, lines, -1)
		case domain.StatusCancelled:
			// Credit the stock exactly once, and only when leaving
			// in_progress. Re-cancelling is a no-op and completed
			// sales keep their stock committed.
			if existing.Status != domain.StatusInProgress {
				return nil
			}
			return s.adjustStock(ctx, tx, orgID, existing.Products, +1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSaleTransition(existing.Status, req.Status)
	switch req.Status {
	case domain.StatusInProgress:
		s.metrics.RecordStockAdjustment("debit", "sale_update")
	case domain.StatusCancelled:
		if existing.Status == domain.StatusInProgress {
			s.metrics.RecordStockAdjustment("credit", "sale_cancel")
		}
	}

	updated, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	warnings, err := s.lowStockWarnings(ctx, orgID, lines)
	if err != nil {
		s.log.Warn("low stock scan failed", zap.Error(err))
	}
	return &domain.MutationResult{Sale: updated, LowStock: warnings}, nil
}

// Delete removes the sale and its lines without touching stock.
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

// buildLines materializes request lines, snapshotting name and image
// from the product row when the client omitted them.
func (s *service) buildLines(ctx context.Context, orgID, saleID int64, reqs []domain.LineRequest, now time.Time) ([]domain.SaleProduct, error) {
	ids := make([]int64, 0, len(reqs))
	for _, line := range reqs {
		if line.ProductID != 0 {
			ids = append(ids, line.ProductID)
		}
	}
	products, err := s.products.FindByIDs(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]productdomain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]domain.SaleProduct, 0, len(reqs))
	for _, req := range reqs {
		line := domain.SaleProduct{
			ID:        s.genID.Generate().Int64(),
			SaleID:    saleID,
			Name:      strings.TrimSpace(req.Name),
			ImageURL:  req.ImageURL,
			Price:     req.Price,
			UnitPrice: req.UnitPrice,
			Qty:       req.Qty,
			CreatedAt: now,
		}
		if req.ProductID != 0 {
			id := req.ProductID
			line.ProductID = &id
			if product, ok := byID[id]; ok {
				if line.Name == "" {
					line.Name = product.Name
				}
				if line.ImageURL == nil {
					line.ImageURL = product.ImageURL
				}
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// adjustStock applies sign*qty per line against the products table
// inside the enclosing transaction. Lines without a product are skipped.
func (s *service) adjustStock(ctx context.Context, tx *gorm.DB, orgID int64, lines []domain.SaleProduct, sign int) error {
	products := s.products.WithTx(tx)
	for _, line := range lines {
		if line.ProductID == nil {
			continue
		}
		if err := products.AdjustStock(ctx, orgID, *line.ProductID, sign*line.Qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) lowStockWarnings(ctx context.Context, orgID int64, lines []domain.SaleProduct) ([]domain.LowStockWarning, error) {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if line.ProductID != nil {
			ids = append(ids, *line.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	products, err := s.products.FindByIDs(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}

	var warnings []domain.LowStockWarning
	for _, p := range products {
		if p.CurrentStock <= s.lowStock {
			warnings = append(warnings, domain.LowStockWarning{
				ProductID:    p.ID,
				Name:         p.Name,
				CurrentStock: p.CurrentStock,
			})
		}
	}
	return warnings, nil
}

// Both joined tables carry created_at, so the fallback must be qualified.
func qualifyOrder(order *option.Order) *option.Order {
	fallback := &option.Order{Column: "sales.created_at", Direction: option.Desc}
	if order == nil {
		return fallback
	}
	qualified, ok := listOrderColumns[order.Column]
	if !ok {
		return fallback
	}
	return &option.Order{Column: qualified, Direction: order.Direction}
}
