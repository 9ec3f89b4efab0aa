// Package domain contains core types for subscription plans.
package domain

import "time"

const (
	PlanFreemium = "freemium"
	PlanPremium  = "premium"
)

// Plan is a billable tier. Zero limit values mean unlimited.
type Plan struct {
	ID              int64     `gorm:"primaryKey" json:"id,string"`
	Name            string    `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Description     string    `gorm:"type:text;not null;default:''" json:"description"`
	StripeProductID *string   `gorm:"column:stripe_product_id;type:text" json:"stripe_product_id,omitempty"`
	StripePriceID   *string   `gorm:"column:stripe_price_id;type:text;uniqueIndex" json:"stripe_price_id,omitempty"`
	Amount          int64     `gorm:"not null;default:0" json:"amount"`
	Currency        string    `gorm:"type:text;not null;default:'usd'" json:"currency"`
	Interval        string    `gorm:"column:billing_interval;type:text;not null;default:'month'" json:"interval"`
	MaxProducts     int       `gorm:"column:max_products;not null;default:0" json:"max_products"`
	MaxCustomers    int       `gorm:"column:max_customers;not null;default:0" json:"max_customers"`
	Active          bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }
