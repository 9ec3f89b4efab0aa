package domain

import plandomain "github.com/vendly/vendly/internal/plan/domain"

// Entitlements captures what a plan allows an organization to do.
type Entitlements struct {
	PlanName     string `json:"plan_name"`
	MaxProducts  int    `json:"max_products"`
	MaxCustomers int    `json:"max_customers"`
}

// IsPremium reports whether the organization is on the premium plan.
func (e *Entitlements) IsPremium() bool {
	return e.PlanName == plandomain.PlanPremium
}

// CanAddProducts reports whether the current product count leaves room under
// the plan limit. A zero limit means unlimited.
func (e *Entitlements) CanAddProducts(productCount int64) bool {
	if e.MaxProducts == 0 {
		return true
	}
	return productCount <= int64(e.MaxProducts)
}

// CanAddCustomers reports whether the current customer count leaves room
// under the plan limit. A zero limit means unlimited.
func (e *Entitlements) CanAddCustomers(customerCount int64) bool {
	if e.MaxCustomers == 0 {
		return true
	}
	return customerCount <= int64(e.MaxCustomers)
}

// CanEnablePublicProductsPage reports whether the plan includes the public
// products page.
func (e *Entitlements) CanEnablePublicProductsPage() bool {
	return e.IsPremium()
}
