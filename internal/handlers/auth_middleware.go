package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/cache"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

const callerContextKey = "caller"

// JWTAuthMiddleware authenticates requests with bearer tokens and resolves the
// account behind them.
type JWTAuthMiddleware struct {
	issuer      *services.TokenIssuer
	accountRepo repositories.AccountRepository
	cacheMgr    *cache.CacheManager
}

func NewJWTAuthMiddleware(issuer *services.TokenIssuer, accountRepo repositories.AccountRepository, cacheMgr *cache.CacheManager) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		issuer:      issuer,
		accountRepo: accountRepo,
		cacheMgr:    cacheMgr,
	}
}

// cachedCaller is the session cache payload. Roles are flattened so the cache
// survives model changes to the role association.
type cachedCaller struct {
	AccountID uint              `json:"account_id"`
	Username  string            `json:"username"`
	Roles     []models.RoleName `json:"roles"`
}

// AuthMiddleware validates the bearer token, loads the account and stores an
// authz.Caller in the request context. The account lookup is cached briefly
// so every request does not hit the database.
func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing or malformed Authorization header",
			})
			return
		}

		claims, err := m.issuer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		caller, err := m.resolveCaller(c, claims.Username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "Account no longer exists",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Internal server error",
			})
			return
		}

		c.Set(callerContextKey, caller)
		c.Next()
	}
}

func (m *JWTAuthMiddleware) resolveCaller(c *gin.Context, username string) (*authz.Caller, error) {
	ctx := c.Request.Context()

	var cached cachedCaller
	if err := m.cacheMgr.Session.Get(ctx, username, &cached); err == nil {
		return &authz.Caller{
			AccountID: cached.AccountID,
			Username:  cached.Username,
			Roles:     cached.Roles,
		}, nil
	}

	account, err := m.accountRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		return nil, err
	}

	caller := &authz.Caller{
		AccountID: account.ID,
		Username:  account.Username,
		Roles:     account.RoleNames(),
	}

	if err := m.cacheMgr.Session.Set(ctx, username, cachedCaller{
		AccountID: caller.AccountID,
		Username:  caller.Username,
		Roles:     caller.Roles,
	}, cache.SessionCacheConfig.TTL); err != nil {
		utils.FromContext(c).Warn("failed to cache session", "error", err)
	}

	return caller, nil
}

// RequireRoleMiddleware rejects callers holding none of the given roles.
func (m *JWTAuthMiddleware) RequireRoleMiddleware(roles ...models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := currentCaller(c)
		if caller == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
			})
			return
		}

		for _, role := range roles {
			if caller.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
		})
	}
}

// currentCaller returns the authenticated caller, or nil when the auth
// middleware did not run.
func currentCaller(c *gin.Context) *authz.Caller {
	if v, ok := c.Get(callerContextKey); ok {
		if caller, ok := v.(*authz.Caller); ok {
			return caller
		}
	}
	return nil
}
