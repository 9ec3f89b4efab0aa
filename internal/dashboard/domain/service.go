// Package domain contains core types for the dashboard service.
package domain

import (
	"context"
	"errors"
	"time"

	customerdomain "github.com/vendly/vendly/internal/customer/domain"
	productdomain "github.com/vendly/vendly/internal/product/domain"
)

type Service interface {
	Summary(ctx context.Context, orgID int64, req SummaryRequest) (*Summary, error)
}

// SummaryRequest bounds the aggregates to an optional time range.
// A nil bound is open-ended.
type SummaryRequest struct {
	Since *time.Time
	Until *time.Time
}

// Summary is the dashboard payload: headline counts, profit over
// completed sales and the top performers.
type Summary struct {
	TotalSales       int64                           `json:"total_sales"`
	TotalCustomers   int64                           `json:"total_customers"`
	TotalProducts    int64                           `json:"total_products"`
	ProductsInStock  int64                           `json:"products_in_stock"`
	Revenue          float64                         `json:"revenue"`
	Cost             float64                         `json:"cost"`
	Profit           float64                         `json:"profit"`
	BestCustomers    []customerdomain.BestCustomer   `json:"best_customers"`
	MostSoldProducts []productdomain.MostSoldProduct `json:"most_sold_products"`
}

var ErrInvalidOrganization = errors.New("invalid_organization")
