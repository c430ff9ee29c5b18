package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
)

func statusOf(code domain.Code) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeBadSignature:
		return http.StatusUnauthorized
	case domain.CodeAlreadyEnrolled, domain.CodeInvalidState:
		return http.StatusConflict
	case domain.CodeTourNotPublished:
		return http.StatusBadRequest
	case domain.CodePaymentGateway:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// fail writes the uniform error body. Unexpected errors become opaque 500s so
// internals never leak to clients.
func fail(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		c.JSON(statusOf(de.Code), gin.H{"error": de.Message, "code": string(de.Code)})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": string(domain.CodeNotFound)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
