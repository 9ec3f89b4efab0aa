// Package domain contains core types for organization subscriptions.
package domain

import (
	"time"

	plandomain "github.com/vendly/vendly/internal/plan/domain"
)

const (
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Subscription ties an organization to a plan for a billing period.
type Subscription struct {
	ID                   int64            `gorm:"primaryKey" json:"id,string"`
	OrgID                int64            `gorm:"column:org_id;not null;index" json:"org_id,string"`
	PlanID               int64            `gorm:"column:plan_id" json:"plan_id,string"`
	Plan                 *plandomain.Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	StripeSubscriptionID *string          `gorm:"column:stripe_subscription_id;type:text;uniqueIndex" json:"stripe_subscription_id,omitempty"`
	Status               string           `gorm:"type:text;not null;default:'active'" json:"status"`
	CurrentPeriodStart   *time.Time       `gorm:"column:current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time       `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool             `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`
	CreatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
