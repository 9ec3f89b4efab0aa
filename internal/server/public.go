package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	productdomain "github.com/vendly/vendly/internal/product/domain"
)

// ListPublicProducts serves the unauthenticated products page for
// organizations that enabled it. Page views are recorded out of band.
func (s *Server) ListPublicProducts(c *gin.Context) {
	orgID := s.currentOrgID(c)

	resp, err := s.productSvc.List(c.Request.Context(), orgID, productdomain.ListRequest{
		Search: c.Query("search"),
		Page:   parsePage(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.organizationSvc.GetByID(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.pageViews.Record(orgID, c.Request.URL.Path, c.Request.Referer(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{
		"organization": gin.H{"name": org.Name, "slug": org.Slug},
		"products":     resp.Items,
		"total":        resp.Total,
		"page":         resp.Page,
	})
}
