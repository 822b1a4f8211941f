package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/pkg/errcode"
	"github.com/xxxsen/resumatch/internal/pkg/jwt"
	"github.com/xxxsen/resumatch/internal/pkg/response"
)

// JWTAuth verifies tokens minted by the external auth service. The user_id
// claim becomes the owner of everything the request creates.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			logutil.GetLogger(c.Request.Context()).Debug("reject token", zap.Error(err))
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin lets through tokens with the admin role and the users listed
// in adminUserIDs. It must run after JWTAuth.
func RequireAdmin(adminUserIDs []string) gin.HandlerFunc {
	admins := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if c.GetString(ContextUserRoleKey) == jwt.RoleAdmin {
			c.Next()
			return
		}
		if _, ok := admins[UserID(c)]; ok {
			c.Next()
			return
		}
		logutil.GetLogger(c.Request.Context()).Warn("admin route denied",
			zap.String("user_id", UserID(c)),
			zap.String("path", c.Request.URL.Path),
		)
		response.Error(c, errcode.ErrForbidden, "admin only")
		c.Abort()
	}
}
