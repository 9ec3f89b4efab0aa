// Package domain contains core types for the product service.
package domain

import "time"

// Product belongs to one organization. Stock is tracked on the product
// row itself and adjusted by purchases and sales.
type Product struct {
	ID           int64     `gorm:"primaryKey" json:"id,string"`
	OrgID        int64     `gorm:"column:org_id;not null;index:idx_products_org_created,priority:1" json:"org_id,string"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	ImageURL     *string   `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	UnitPrice    float64   `gorm:"column:unit_price;type:numeric(12,2);not null;default:0" json:"unit_price"`
	RetailPrice  float64   `gorm:"column:retail_price;type:numeric(12,2);not null;default:0" json:"retail_price"`
	CurrentStock int       `gorm:"column:current_stock;not null;default:0" json:"current_stock"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_products_org_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }
