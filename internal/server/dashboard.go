package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/vendly/vendly/internal/dashboard/domain"
)

func (s *Server) GetDashboard(c *gin.Context) {
	since, err := parseOptionalTime(c.Query("since"), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	until, err := parseOptionalTime(c.Query("until"), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.dashboardSvc.Summary(c.Request.Context(), s.currentOrgID(c), dashboarddomain.SummaryRequest{
		Since: since,
		Until: until,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
