package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freight-pricing-service/internal/auth"
	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/repository"
)

const (
	principalKey = "principal"
	authHeader   = "Authorization"
	bearerPrefix = "Bearer"
)

// BusinessLookup resolves the business entity a token is scoped to.
type BusinessLookup interface {
	Get(ctx context.Context, id uuid.UUID) (model.BusinessEntity, error)
}

// Auth accepts HS256 bearer tokens with a known role. Non-admin tokens must be
// scoped to an active business entity.
func Auth(parser *auth.Parser, businesses BusinessLookup, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(authHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header missing"})
			return
		}

		scheme, token, found := strings.Cut(raw, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, bearerPrefix) || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		principal := claims.Principal()

		switch principal.Role {
		case model.RoleAdmin:
		case model.RolePlanner, model.RoleViewer:
			if principal.BusinessEntityID == nil {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token is not scoped to a business entity"})
				return
			}
			business, err := businesses.Get(c.Request.Context(), *principal.BusinessEntityID)
			switch {
			case errors.Is(err, repository.ErrNotFound) || (err == nil && !business.IsActive):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "business entity is inactive"})
				return
			case err != nil:
				log.Error().Err(err).Str("business_entity_id", principal.BusinessEntityID.String()).Msg("business lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unknown role"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	if !ok {
		return model.Principal{}, false
	}
	return principal, true
}
