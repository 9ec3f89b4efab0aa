package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
)

type createOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

type updateSettingsRequest struct {
	Name                      *string `json:"name"`
	PublicProductsPageEnabled *bool   `json:"public_products_page_enabled"`
}

type addMemberRequest struct {
	UserID int64  `json:"user_id,string" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	userID := s.currentUserID(c)
	if userID == 0 {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), userID, organizationdomain.CreateOrganizationRequest{
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"organization": org})
}

func (s *Server) GetOrganization(c *gin.Context) {
	org, err := s.organizationSvc.GetByID(c.Request.Context(), s.currentOrgID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (s *Server) UpdateOrganizationSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.organizationSvc.UpdateSettings(c.Request.Context(), s.currentOrgID(c), organizationdomain.UpdateSettingsRequest{
		Name:                      req.Name,
		PublicProductsPageEnabled: req.PublicProductsPageEnabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (s *Server) AddOrganizationMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	orgID := s.currentOrgID(c)
	err := s.organizationSvc.AddMember(c.Request.Context(), orgID, req.UserID, req.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	// A cached role from before the membership change must not outlive it.
	s.roleCache.Invalidate(orgID, req.UserID)
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}
