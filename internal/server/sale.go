package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vendly/vendly/internal/providers/pdf"
	saledomain "github.com/vendly/vendly/internal/sale/domain"
)

func (s *Server) ListSales(c *gin.Context) {
	resp, err := s.saleSvc.List(c.Request.Context(), s.currentOrgID(c), saledomain.ListRequest{
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

func (s *Server) GetSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sale, err := s.saleSvc.Get(c.Request.Context(), s.currentOrgID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

func (s *Server) CreateSale(c *gin.Context) {
	var req saledomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.saleSvc.Create(c.Request.Context(), s.currentOrgID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) UpdateSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req saledomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.saleSvc.Update(c.Request.Context(), s.currentOrgID(c), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) DeleteSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.saleSvc.Delete(c.Request.Context(), s.currentOrgID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// DownloadSaleReceipt renders the sale as a PDF receipt.
func (s *Server) DownloadSaleReceipt(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orgID := s.currentOrgID(c)
	sale, err := s.saleSvc.Get(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.organizationSvc.GetByID(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customerName := ""
	if sale.CustomerID != nil {
		cust, err := s.customerSvc.Get(c.Request.Context(), orgID, *sale.CustomerID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		customerName = cust.Name
	}

	reader, err := s.receipts.GenerateSaleReceipt(c.Request.Context(), buildReceiptData(org.Name, customerName, sale))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=sale-%d.pdf", sale.ID))
	c.Data(http.StatusOK, "application/pdf", body)
}

func buildReceiptData(orgName, customerName string, sale *saledomain.Sale) pdf.ReceiptData {
	var subtotal float64
	lines := make([]pdf.ReceiptLine, 0, len(sale.Products))
	for _, line := range sale.Products {
		amount := line.Price * float64(line.Qty)
		subtotal += amount
		lines = append(lines, pdf.ReceiptLine{
			Name:      line.Name,
			Qty:       line.Qty,
			UnitPrice: formatMoney(line.Price),
			Amount:    formatMoney(amount),
		})
	}

	notes := ""
	if sale.Notes != nil {
		notes = *sale.Notes
	}

	return pdf.ReceiptData{
		OrgName:      orgName,
		CustomerName: customerName,
		SaleID:       strconv.FormatInt(sale.ID, 10),
		SaleDate:     sale.SaleDate.Format(dateOnlyLayout),
		Status:       sale.Status,
		Lines:        lines,
		Subtotal:     formatMoney(subtotal),
		ShippingCost: formatMoney(sale.ShippingCost),
		Total:        formatMoney(subtotal + sale.ShippingCost),
		Notes:        notes,
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
