package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/middleware"
	"github.com/cppla/vitalog/services"
	"github.com/cppla/vitalog/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, v != 0
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case float64:
		return uint(v), v > 0
	default:
		return 0, false
	}
}

// respondServiceError maps service errors onto HTTP statuses. Anything
// unrecognised is logged and reported as an opaque 500.
func respondServiceError(ctx *gin.Context, logger *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.Error(ctx, http.StatusBadRequest, "validation failed", verr.Messages...)
	case errors.Is(err, services.ErrDuplicateUser):
		utils.Error(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		utils.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrCheckinNotFound):
		utils.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateCheckin):
		utils.Error(ctx, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed",
			zap.String("trace_id", utils.TraceID(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		utils.Error(ctx, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

func invalidPayload(ctx *gin.Context) {
	utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
}

func requireUser(ctx *gin.Context) (uint, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}

// queryDays reads ?days=, falling back to def when absent. Range checks are
// left to the services.
func queryDays(ctx *gin.Context, def int) (int, bool) {
	raw := strings.TrimSpace(ctx.Query("days"))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "validation failed", "days must be an integer")
		return 0, false
	}
	return n, true
}

func paramID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, "validation failed", "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
