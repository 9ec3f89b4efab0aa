package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/observability/metrics"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/internal/purchase/domain"
	"github.com/vendly/vendly/internal/retry"
	"github.com/vendly/vendly/pkg/db/option"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The list joins products, so exposed order columns map to qualified ones.
var listOrderColumns = map[string]string{
	"created_at":     "purchases.created_at",
	"purchase_date":  "purchases.purchase_date",
	"purchase_price": "purchases.purchase_price",
	"qty_purchased":  "purchases.qty_purchased",
	"product_name":   "p.name",
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
}

func New(log *zap.Logger, repo domain.Repository, products productdomain.Repository, m *metrics.Metrics, genID *snowflake.Node) domain.Service {
	return &service{
		log:      log.Named("purchase.service"),
		repo:     repo,
		products: products,
		metrics:  m,
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
	opts := append(append([]option.Option{}, filters...),
		option.WithOrder(qualifyOrder(req.Order), qualifiedOrderColumns),
		option.WithPage(req.Page),
	)

	var (
		items []domain.PurchaseRow
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

func (s *service) Get(ctx context.Context, orgID, id int64) (*domain.Purchase, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) Create(ctx context.Context, orgID int64, req domain.UpsertRequest) (*domain.Purchase, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	purchaseDate := now
	if req.PurchaseDate != nil {
		purchaseDate = *req.PurchaseDate
	}
	purchase := &domain.Purchase{
		ID:            s.genID.Generate().Int64(),
		OrgID:         orgID,
		ProductID:     req.ProductID,
		PurchaseDate:  purchaseDate,
		PurchasePrice: req.PurchasePrice,
		QtyPurchased:  req.QtyPurchased,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.repo.Transaction(ctx, func(tx *gorm.DB, repo domain.Repository) error {
		if err := repo.Create(ctx, purchase); err != nil {
			return err
		}
		return s.products.WithTx(tx).AdjustStock(ctx, orgID, purchase.ProductID, purchase.QtyPurchased)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStockAdjustment("credit", "purchase")
	return purchase, nil
}

func (s *service) Update(ctx context.Context, orgID, id int64, req domain.UpsertRequest) (*domain.Purchase, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	purchaseDate := existing.PurchaseDate
	if req.PurchaseDate != nil {
		purchaseDate = *req.PurchaseDate
	}
	fields := map[string]any{
		"product_id":     req.ProductID,
		"purchase_date":  purchaseDate,
		"purchase_price": req.PurchasePrice,
		"qty_purchased":  req.QtyPurchased,
		"updated_at":     time.Now().UTC(),
	}

	// Reverse the old stock credit and apply the new one so an edited
	// quantity or product keeps stock consistent.
	err = s.repo.Transaction(ctx, func(tx *gorm.DB, repo domain.Repository) error {
		if err := repo.Update(ctx, orgID, id, fields); err != nil {
			return err
		}
		products := s.products.WithTx(tx)
		if err := products.AdjustStock(ctx, orgID, existing.ProductID, -existing.QtyPurchased); err != nil {
			return err
		}
		return products.AdjustStock(ctx, orgID, req.ProductID, req.QtyPurchased)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStockAdjustment("credit", "purchase_update")
	return s.repo.FindByID(ctx, orgID, id)
}

func (s *service) Delete(ctx context.Context, orgID, id int64) error {
	if orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	existing, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB, repo domain.Repository) error {
		if err := repo.Delete(ctx, orgID, id); err != nil {
			return err
		}
		return s.products.WithTx(tx).AdjustStock(ctx, orgID, existing.ProductID, -existing.QtyPurchased)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordStockAdjustment("debit", "purchase_delete")
	return nil
}

// Both joined tables carry created_at, so the fallback must be qualified.
func qualifyOrder(order *option.Order) *option.Order {
	fallback := &option.Order{Column: "purchases.created_at", Direction: option.Desc}
	if order == nil {
		return fallback
	}
	qualified, ok := listOrderColumns[order.Column]
	if !ok {
		return fallback
	}
	return &option.Order{Column: qualified, Direction: order.Direction}
}

func validate(req *domain.UpsertRequest) error {
	if req.ProductID == 0 {
		return domain.ErrInvalidProduct
	}
	if req.QtyPurchased <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}
