// Package domain contains core types for the customer service.
package domain

import "time"

const (
	TrustStatusTrusted    = "trusted"
	TrustStatusNotTrusted = "not_trusted"
)

// Customer belongs to one organization.
type Customer struct {
	ID          int64   `gorm:"primaryKey" json:"id,string"`
	OrgID       int64   `gorm:"column:org_id;not null;index:idx_customers_org_created,priority:1" json:"org_id,string"`
	Name        string  `gorm:"type:text;not null" json:"name"`
	Phone       string  `gorm:"type:text;not null;default:''" json:"phone"`
	Email       *string `gorm:"type:text" json:"email,omitempty"`
	Address     *string `gorm:"type:text" json:"address,omitempty"`
	MapURL      *string `gorm:"column:map_url;type:text" json:"map_url,omitempty"`
	Notes       *string `gorm:"type:text" json:"notes,omitempty"`
	TrustStatus string  `gorm:"column:trust_status;type:text;not null;default:'trusted'" json:"trust_status"`
	// CashbackBalance accrues loyalty credit; nothing spends it yet.
	CashbackBalance float64   `gorm:"column:cashback_balance;type:numeric(12,2);not null;default:0" json:"cashback_balance"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_customers_org_created,priority:2" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// ValidTrustStatus reports whether s is a known trust status.
func ValidTrustStatus(s string) bool {
	return s == TrustStatusTrusted || s == TrustStatusNotTrusted
}
