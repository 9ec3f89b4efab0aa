package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	assetdomain "github.com/vendly/vendly/internal/asset/domain"
	authdomain "github.com/vendly/vendly/internal/auth/domain"
	billingdomain "github.com/vendly/vendly/internal/billing/domain"
	customerdomain "github.com/vendly/vendly/internal/customer/domain"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	purchasedomain "github.com/vendly/vendly/internal/purchase/domain"
	saledomain "github.com/vendly/vendly/internal/sale/domain"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware renders the last collected error once the
// handler chain finishes, unless a handler already wrote a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, err.Error()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, organizationdomain.ErrForbidden),
		errors.Is(err, organizationdomain.ErrNotMember):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, productdomain.ErrProductLimit),
		errors.Is(err, customerdomain.ErrCustomerLimit):
		return http.StatusForbidden, errorPayload{
			Type:    "plan_limit_reached",
			Message: err.Error(),
		}
	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "user already exists",
		}
	case errors.Is(err, saledomain.ErrSaleCancelled):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, billingdomain.ErrNotConfigured),
		errors.Is(err, assetdomain.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidRole),
		errors.Is(err, organizationdomain.ErrInvalidUser),
		errors.Is(err, customerdomain.ErrInvalidOrganization),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidTrustStatus),
		errors.Is(err, productdomain.ErrInvalidOrganization),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, purchasedomain.ErrInvalidOrganization),
		errors.Is(err, purchasedomain.ErrInvalidProduct),
		errors.Is(err, purchasedomain.ErrInvalidQuantity),
		errors.Is(err, saledomain.ErrInvalidOrganization),
		errors.Is(err, saledomain.ErrInvalidStatus),
		errors.Is(err, saledomain.ErrEmptySale),
		errors.Is(err, saledomain.ErrInvalidQuantity),
		errors.Is(err, billingdomain.ErrInvalidSignature),
		errors.Is(err, billingdomain.ErrInvalidPayload),
		errors.Is(err, billingdomain.ErrMissingField),
		errors.Is(err, subscriptiondomain.ErrInvalidOrganization),
		errors.Is(err, subscriptiondomain.ErrInvalidStatus),
		errors.Is(err, assetdomain.ErrInvalidOrganization),
		errors.Is(err, assetdomain.ErrUnsupportedType),
		errors.Is(err, assetdomain.ErrTooLarge):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, organizationdomain.ErrInvalidOrganization),
		errors.Is(err, customerdomain.ErrCustomerNotFound),
		errors.Is(err, productdomain.ErrProductNotFound),
		errors.Is(err, purchasedomain.ErrPurchaseNotFound),
		errors.Is(err, saledomain.ErrSaleNotFound),
		errors.Is(err, billingdomain.ErrUnknownOrganization),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
