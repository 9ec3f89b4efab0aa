package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/vendly/vendly/internal/customer/domain"
)

func (s *Server) ListCustomers(c *gin.Context) {
	resp, err := s.customerSvc.List(c.Request.Context(), s.currentOrgID(c), customerdomain.ListRequest{
		Search:      c.Query("search"),
		TrustStatus: c.Query("trust_status"),
		Page:        parsePage(c),
		Order:       parseOrder(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cust, err := s.customerSvc.Get(c.Request.Context(), s.currentOrgID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": cust})
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cust, err := s.customerSvc.Create(c.Request.Context(), s.currentOrgID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": cust})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req customerdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cust, err := s.customerSvc.Update(c.Request.Context(), s.currentOrgID(c), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": cust})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.customerSvc.Delete(c.Request.Context(), s.currentOrgID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
