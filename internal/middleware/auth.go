package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"panda/internal/apperrors"
	"panda/internal/auth"
	"panda/internal/models"

	"github.com/gin-gonic/gin"
)

// CheckUserKey is the gin context key holding the authenticated *models.User.
const CheckUserKey = "user"

type TokenVerifier interface {
	Verify(raw string) (auth.Claims, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, id uint) (*models.User, error)
}

// RequireUser authenticates the bearer token and loads its user into the
// context. Requests without a valid token stop here with 401.
func RequireUser(tokens TokenVerifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Unauthorized(c, apperrors.ErrUnauthenticated)
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			Unauthorized(c, err)
			return
		}

		user, err := users.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthenticated) {
				Unauthorized(c, err)
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(CheckUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// Unauthorized aborts with 401 and the bearer challenge. The body never
// reveals which check failed.
func Unauthorized(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthenticated.Error()})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
