package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/vendly/vendly/internal/purchase/domain"
)

func (s *Server) ListPurchases(c *gin.Context) {
	resp, err := s.purchaseSvc.List(c.Request.Context(), s.currentOrgID(c), purchasedomain.ListRequest{
		Search: c.Query("search"),
		Page:   parsePage(c),
		Order:  parseOrder(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetPurchase(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	p, err := s.purchaseSvc.Get(c.Request.Context(), s.currentOrgID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": p})
}

func (s *Server) CreatePurchase(c *gin.Context) {
	var req purchasedomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	p, err := s.purchaseSvc.Create(c.Request.Context(), s.currentOrgID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase": p})
}

func (s *Server) UpdatePurchase(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req purchasedomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	p, err := s.purchaseSvc.Update(c.Request.Context(), s.currentOrgID(c), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": p})
}

func (s *Server) DeletePurchase(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.purchaseSvc.Delete(c.Request.Context(), s.currentOrgID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
