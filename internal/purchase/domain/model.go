// Package domain contains core types for the purchase service.
package domain

import "time"

// Purchase records incoming stock for a product. Creating one credits
// the product's current stock inside the same transaction.
type Purchase struct {
	ID            int64     `gorm:"primaryKey" json:"id,string"`
	OrgID         int64     `gorm:"column:org_id;not null;index:idx_purchases_org_created,priority:1" json:"org_id,string"`
	ProductID     int64     `gorm:"column:product_id;not null" json:"product_id,string"`
	PurchaseDate  time.Time `gorm:"column:purchase_date;not null;default:CURRENT_TIMESTAMP" json:"purchase_date"`
	PurchasePrice float64   `gorm:"column:purchase_price;type:numeric(12,2);not null;default:0" json:"purchase_price"`
	QtyPurchased  int       `gorm:"column:qty_purchased;not null" json:"qty_purchased"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_purchases_org_created,priority:2" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Purchase) TableName() string { return "purchases" }
