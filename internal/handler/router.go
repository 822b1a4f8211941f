package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/resumatch/internal/middleware"
)

type RouterDeps struct {
	Analysis     *AnalysisHandler
	Documents    *DocumentHandler
	JWTSecret    []byte
	AdminUserIDs []string
	// RateLimit is the minimum interval between compare calls of one user.
	RateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	compareLimit := middleware.RateLimit(deps.RateLimit)
	authGroup.POST("/analysis/compare", compareLimit, deps.Analysis.Compare)
	authGroup.POST("/analysis/compare-text", compareLimit, deps.Analysis.CompareText)
	authGroup.GET("/analysis/history", deps.Analysis.History)
	authGroup.GET("/analysis/:id", deps.Analysis.Get)
	authGroup.POST("/analysis/clear-cache", middleware.RequireAdmin(deps.AdminUserIDs), deps.Analysis.ClearCache)

	authGroup.GET("/documents/:id", deps.Documents.Get)
}
