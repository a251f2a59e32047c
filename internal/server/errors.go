package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	affiliatedomain "github.com/kairahstudio/kairah/internal/affiliate/domain"
	paymentdomain "github.com/kairahstudio/kairah/internal/payment/domain"
	"github.com/kairahstudio/kairah/internal/plan"
	snapshotdomain "github.com/kairahstudio/kairah/internal/snapshot/domain"
	userdomain "github.com/kairahstudio/kairah/internal/user/domain"
	videodomain "github.com/kairahstudio/kairah/internal/video/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
	ErrInternal        = errors.New("internal_error")
)

// ErrorHandlingMiddleware converts domain errors collected on the gin
// context into the stable JSON error envelope.
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
		c.Header("Content-Type", "application/json")
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

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Code:    codeOf(err),
			Message: "unauthorized",
		}
	case errors.Is(err, ErrTooManyRequests),
		errors.Is(err, videodomain.ErrGenerationBusy):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Code:    codeOf(err),
			Message: "too many requests",
		}
	case errors.Is(err, userdomain.ErrUserAlreadyExists),
		errors.Is(err, paymentdomain.ErrPaymentConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    codeOf(err),
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    codeOf(err),
			Message: "not found",
		}
	case isQuotaError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "quota_exceeded",
			Code:    codeOf(err),
			Message: "quota exceeded",
		}
	case errors.Is(err, videodomain.ErrPremiumRequired):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Code:    codeOf(err),
			Message: "forbidden",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    codeOf(err),
			Message: "validation error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, videodomain.ErrVideoNotFound),
		errors.Is(err, affiliatedomain.ErrAccountNotFound),
		errors.Is(err, paymentdomain.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isQuotaError(err error) bool {
	switch {
	case errors.Is(err, videodomain.ErrClipLengthExceeded),
		errors.Is(err, videodomain.ErrVideoQuotaExceeded),
		errors.Is(err, videodomain.ErrDownloadQuotaExceeded):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidPlan),
		errors.Is(err, plan.ErrUnknownPlan),
		errors.Is(err, videodomain.ErrInvalidAspectRatio),
		errors.Is(err, paymentdomain.ErrInvalidPayment),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, affiliatedomain.ErrInvalidAmount),
		errors.Is(err, affiliatedomain.ErrInsufficientBalance),
		errors.Is(err, snapshotdomain.ErrInvalidSnapshot):
		return true
	default:
		return false
	}
}

func codeOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// classifyErrorForLog feeds the request logger's error fields.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	return payload.Type, payload.Code
}
