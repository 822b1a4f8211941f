package middleware

import "github.com/gin-gonic/gin"

const (
	ContextUserIDKey    = "user_id"
	ContextUserRoleKey  = "user_role"
	ContextRequestIDKey = "request_id"
)

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}
