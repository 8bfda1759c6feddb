package handlers

import (
	"errors"
	"net/http"
	"strings"

	"panda/internal/apperrors"
	"panda/internal/middleware"
	"panda/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Anything outside the
// apperrors taxonomy is a 500 and its detail stays in the request log.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		_ = c.Error(err)
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg(err, apperrors.ErrUnauthenticated)})
	case errors.Is(err, apperrors.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrForbidden.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msg(err, apperrors.ErrNotFound)})
	case errors.Is(err, apperrors.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": msg(err, apperrors.ErrConflict)})
	case errors.Is(err, apperrors.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg(err, apperrors.ErrInvalidArgument)})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// msg drops the sentinel prefix so clients see only the detail.
func msg(err, sentinel error) string {
	text := err.Error()
	if detail, ok := strings.CutPrefix(text, sentinel.Error()+": "); ok && detail != "" {
		return detail
	}
	return text
}

// currentUser returns the authenticated user, answering 401 when absent.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Unauthorized(c, apperrors.ErrUnauthenticated)
	}
	return user, ok
}
