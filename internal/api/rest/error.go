package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest      ErrorCode = "bad_request"
	errCodeNotFound        ErrorCode = "not_found"
	errCodeForbidden       ErrorCode = "forbidden"
	errCodeInsufficientFee ErrorCode = "insufficient_fee"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message, details...)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}

// respondDomainError maps a registry error to its HTTP representation
func respondDomainError(c *gin.Context, err error) {
	switch domain.CodeOf(err) {
	case domain.ErrCodeAccessDenied:
		respondWithError(c, http.StatusForbidden, errCodeForbidden, "Access denied", err.Error())
	case domain.ErrCodeInvalidArgument:
		respondWithError(c, http.StatusBadRequest, errCodeBadRequest, "Invalid argument", err.Error())
	case domain.ErrCodeInsufficientFee:
		respondWithError(c, http.StatusPaymentRequired, errCodeInsufficientFee, "Insufficient fee balance", err.Error())
	case domain.ErrCodeNotFound:
		respondNotFound(c, "Token not found", err.Error())
	default:
		respondInternalError(c, err, "Operation failed")
	}
}
