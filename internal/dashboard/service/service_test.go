package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/vendly/vendly/internal/customer/domain"
	customerrepository "github.com/vendly/vendly/internal/customer/repository"
	"github.com/vendly/vendly/internal/dashboard/domain"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	productrepository "github.com/vendly/vendly/internal/product/repository"
	saledomain "github.com/vendly/vendly/internal/sale/domain"
	salerepository "github.com/vendly/vendly/internal/sale/repository"
	"github.com/vendly/vendly/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID int64 = 31

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&customerdomain.Customer{},
		&productdomain.Product{},
		&saledomain.Sale{},
		&saledomain.SaleProduct{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(zap.NewNop(), salerepository.New(dbConn), customerrepository.New(dbConn), productrepository.New(dbConn))
	return &fixture{svc: svc, db: dbConn, node: node}
}

func (f *fixture) seedSale(t *testing.T, customerID, productID int64, status string, qty int, price, unitPrice, shipping float64) {
	t.Helper()
	sale := &saledomain.Sale{
		ID:           f.node.Generate().Int64(),
		OrgID:        testOrgID,
		CustomerID:   &customerID,
		Status:       status,
		ShippingCost: shipping,
	}
	if err := f.db.Omit("Products").Create(sale).Error; err != nil {
		t.Fatalf("failed to seed sale: %v", err)
	}
	line := &saledomain.SaleProduct{
		ID:        f.node.Generate().Int64(),
		SaleID:    sale.ID,
		ProductID: &productID,
		Price:     price,
		UnitPrice: unitPrice,
		Qty:       qty,
	}
	if err := f.db.Create(line).Error; err != nil {
		t.Fatalf("failed to seed sale line: %v", err)
	}
}

func TestSummaryRequiresOrganization(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Summary(context.Background(), 0, domain.SummaryRequest{})
	if err != domain.ErrInvalidOrganization {
		t.Fatalf("expected ErrInvalidOrganization, got %v", err)
	}
}

func TestSummaryAggregates(t *testing.T) {
	f := newFixture(t)

	customers := make([]customerdomain.Customer, 2)
	for i, name := range []string{"Maria Lopez", "John Reyes"} {
		customers[i] = customerdomain.Customer{
			ID:          f.node.Generate().Int64(),
			OrgID:       testOrgID,
			Name:        name,
			TrustStatus: customerdomain.TrustStatusTrusted,
		}
		if err := f.db.Create(&customers[i]).Error; err != nil {
			t.Fatalf("failed to seed customer: %v", err)
		}
	}

	products := make([]productdomain.Product, 2)
	for i, p := range []struct {
		name  string
		stock int
	}{{"Beans", 5}, {"Filters", 0}} {
		products[i] = productdomain.Product{
			ID:           f.node.Generate().Int64(),
			OrgID:        testOrgID,
			Name:         p.name,
			CurrentStock: p.stock,
		}
		if err := f.db.Create(&products[i]).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	// Maria completes two sales, John one; one cancelled sale must not
	// count toward profit or top performers.
	f.seedSale(t, customers[0].ID, products[0].ID, saledomain.StatusCompleted, 2, 10, 6, 1)
	f.seedSale(t, customers[0].ID, products[0].ID, saledomain.StatusCompleted, 1, 10, 6, 0)
	f.seedSale(t, customers[1].ID, products[1].ID, saledomain.StatusCompleted, 5, 4, 2, 0)
	f.seedSale(t, customers[1].ID, products[0].ID, saledomain.StatusCancelled, 9, 10, 6, 0)

	summary, err := f.svc.Summary(context.Background(), testOrgID, domain.SummaryRequest{})
	if err != nil {
		t.Fatalf("failed to build summary: %v", err)
	}

	if summary.TotalSales != 4 || summary.TotalCustomers != 2 || summary.TotalProducts != 2 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.ProductsInStock != 1 {
		t.Fatalf("expected 1 product in stock, got %d", summary.ProductsInStock)
	}

	// Revenue: 2*10 + 1*10 + 5*4 + shipping 1 = 51. Cost: 2*6 + 1*6 + 5*2 = 28.
	if summary.Revenue != 51 {
		t.Fatalf("expected revenue 51, got %v", summary.Revenue)
	}
	if summary.Cost != 28 {
		t.Fatalf("expected cost 28, got %v", summary.Cost)
	}
	if summary.Profit != 23 {
		t.Fatalf("expected profit 23, got %v", summary.Profit)
	}

	if len(summary.BestCustomers) != 2 || summary.BestCustomers[0].Name != "Maria Lopez" {
		t.Fatalf("unexpected best customers: %+v", summary.BestCustomers)
	}
	if len(summary.MostSoldProducts) != 2 || summary.MostSoldProducts[0].Name != "Filters" {
		t.Fatalf("unexpected most sold products: %+v", summary.MostSoldProducts)
	}
}
