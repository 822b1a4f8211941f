package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/middleware"
	"github.com/xxxsen/resumatch/internal/pkg/errcode"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
	"github.com/xxxsen/resumatch/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	return middleware.UserID(c)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logger := logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
	)
	switch {
	case appErr.IsExtraction(err):
		logger.Info("request rejected", zap.Error(err))
		response.Error(c, errcode.ErrInvalidFile, err.Error())
	case appErr.IsNotFound(err):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		logger.Info("request rejected", zap.Error(err))
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case appErr.IsConflict(err):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case appErr.IsProvider(err):
		logger.Error("provider error", zap.Error(err))
		response.Error(c, errcode.ErrAIUnavailable, "analysis provider unavailable")
	default:
		logger.Error("request failed", zap.Error(err))
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}

// queryInt reads a non negative integer query parameter, def when absent.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	value := c.Query(name)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, appErr.ErrInvalid
	}
	return parsed, nil
}
