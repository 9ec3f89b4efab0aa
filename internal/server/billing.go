package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/vendly/vendly/internal/billing/domain"
)

type checkoutSessionRequest struct {
	OrgID      int64  `json:"org_id,string"`
	PriceID    string `json:"price_id"`
	Email      string `json:"email"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type portalSessionRequest struct {
	OrgID     int64  `json:"org_id,string"`
	ReturnURL string `json:"return_url"`
}

// HandleStripeWebhook verifies and applies a provider event. A bad
// signature is rejected before anything is written.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	outcome, err := s.billingSvc.HandleWebhook(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome})
}

// The hosted-session endpoints are called directly from the browser, so
// they answer preflight themselves and carry CORS headers on every
// response.
func sessionCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// handleSessionPreflight answers OPTIONS unconditionally and rejects
// every method except POST. It reports whether the request was already
// handled.
func handleSessionPreflight(c *gin.Context) bool {
	sessionCORSHeaders(c)

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
		return true
	case http.MethodPost:
		return false
	default:
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: errorPayload{
			Type:    "method_not_allowed",
			Message: "method not allowed",
		}})
		return true
	}
}

func (s *Server) CreateCheckoutSession(c *gin.Context) {
	if handleSessionPreflight(c) {
		return
	}

	var req checkoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, billingdomain.ErrMissingField)
		return
	}
	if req.OrgID == 0 || strings.TrimSpace(req.PriceID) == "" || strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, billingdomain.ErrMissingField)
		return
	}

	if !s.requireMembership(c, req.OrgID) {
		return
	}

	session, err := s.billingSvc.CreateCheckoutSession(c.Request.Context(), req.OrgID, billingdomain.CheckoutSessionRequest{
		PriceID:    req.PriceID,
		Email:      req.Email,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) CreatePortalSession(c *gin.Context) {
	if handleSessionPreflight(c) {
		return
	}

	var req portalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, billingdomain.ErrMissingField)
		return
	}
	if req.OrgID == 0 || strings.TrimSpace(req.ReturnURL) == "" {
		AbortWithError(c, billingdomain.ErrMissingField)
		return
	}

	if !s.requireMembership(c, req.OrgID) {
		return
	}

	session, err := s.billingSvc.CreatePortalSession(c.Request.Context(), req.OrgID, billingdomain.PortalSessionRequest{
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) requireMembership(c *gin.Context, orgID int64) bool {
	userID := s.currentUserID(c)
	if userID == 0 {
		AbortWithError(c, ErrUnauthorized)
		return false
	}

	member, err := s.organizationSvc.IsMember(c.Request.Context(), orgID, userID)
	if err != nil {
		AbortWithError(c, err)
		return false
	}
	if !member {
		AbortWithError(c, ErrForbidden)
		return false
	}
	return true
}
