package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.planSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// ListSubscriptions pages through the organization's subscription
// history, searchable by plan name.
func (s *Server) ListSubscriptions(c *gin.Context) {
	resp, err := s.subscriptionSvc.List(c.Request.Context(), s.currentOrgID(c), subscriptiondomain.ListRequest{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   parsePage(c),
		Order:  parseOrder(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSubscription returns the organization's subscription plus the
// derived entitlements the SPA uses to gate features client-side.
func (s *Server) GetSubscription(c *gin.Context) {
	orgID := s.currentOrgID(c)

	sub, err := s.subscriptionSvc.GetForOrg(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ent, err := s.subscriptionSvc.Entitlements(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"entitlements": gin.H{
			"is_premium":                      ent.IsPremium(),
			"max_products":                    ent.MaxProducts,
			"max_customers":                   ent.MaxCustomers,
			"can_enable_public_products_page": ent.CanEnablePublicProductsPage(),
		},
	})
}
