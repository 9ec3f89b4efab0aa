// Package domain contains core types for the sale service.
package domain

import "time"

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a known sale status.
func ValidStatus(s string) bool {
	return s == StatusInProgress || s == StatusCompleted || s == StatusCancelled
}

// Sale is one transaction with a customer. Stock moves when the sale is
// created or changes status, never when it is deleted.
type Sale struct {
	ID           int64         `gorm:"primaryKey" json:"id,string"`
	OrgID        int64         `gorm:"column:org_id;not null;index:idx_sales_org_created,priority:1" json:"org_id,string"`
	CustomerID   *int64        `gorm:"column:customer_id" json:"customer_id,string,omitempty"`
	Status       string        `gorm:"type:text;not null;default:'in_progress'" json:"status"`
	SaleDate     time.Time     `gorm:"column:sale_date;not null;default:CURRENT_TIMESTAMP" json:"sale_date"`
	ShippingCost float64       `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0" json:"shipping_cost"`
	Notes        *string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_sales_org_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Products     []SaleProduct `gorm:"foreignKey:SaleID" json:"products,omitempty"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

// SaleProduct is one line of a sale. Name and image are snapshots taken
// at sale time so later product edits do not rewrite history.
type SaleProduct struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	SaleID    int64     `gorm:"column:sale_id;not null;index" json:"sale_id,string"`
	ProductID *int64    `gorm:"column:product_id;index" json:"product_id,string,omitempty"`
	Name      string    `gorm:"type:text;not null;default:''" json:"name"`
	ImageURL  *string   `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Price     float64   `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	UnitPrice float64   `gorm:"column:unit_price;type:numeric(12,2);not null;default:0" json:"unit_price"`
	Qty       int       `gorm:"not null" json:"qty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (SaleProduct) TableName() string { return "sale_products" }
