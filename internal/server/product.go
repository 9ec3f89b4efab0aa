package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	assetdomain "github.com/vendly/vendly/internal/asset/domain"
	productdomain "github.com/vendly/vendly/internal/product/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.productSvc.List(c.Request.Context(), s.currentOrgID(c), productdomain.ListRequest{
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

func (s *Server) GetProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	prod, err := s.productSvc.Get(c.Request.Context(), s.currentOrgID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": prod})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	prod, err := s.productSvc.Create(c.Request.Context(), s.currentOrgID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": prod})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req productdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	prod, err := s.productSvc.Update(c.Request.Context(), s.currentOrgID(c), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": prod})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.productSvc.Delete(c.Request.Context(), s.currentOrgID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UploadProductImage stores a multipart image and returns its public
// URL for use in a later product create or update.
func (s *Server) UploadProductImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	defer file.Close()

	stored, err := s.assetSvc.UploadProductImage(c.Request.Context(), s.currentOrgID(c), assetdomain.UploadRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": stored})
}
