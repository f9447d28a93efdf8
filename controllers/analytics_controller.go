package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/services"
	"github.com/cppla/vitalog/utils"
)

const defaultAnalyticsDays = 30

// AnalyticsController serves aggregates over the caller's check-ins.
type AnalyticsController struct {
	analytics *services.AnalyticsService
	logger    *zap.Logger
}

func NewAnalyticsController(analytics *services.AnalyticsService, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{analytics: analytics, logger: logger}
}

func (a *AnalyticsController) Summary(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	days, ok := queryDays(ctx, defaultAnalyticsDays)
	if !ok {
		return
	}
	summary, err := a.analytics.Summary(ctx.Request.Context(), userID, days)
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	utils.Success(ctx, gin.H{"days": days, "summary": summary})
}

func (a *AnalyticsController) Weekly(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	days, ok := queryDays(ctx, defaultAnalyticsDays)
	if !ok {
		return
	}
	buckets, err := a.analytics.Weekly(ctx.Request.Context(), userID, days)
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	utils.Success(ctx, gin.H{"days": days, "weeks": buckets})
}

func (a *AnalyticsController) Dashboard(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	dashboard, err := a.analytics.Dashboard(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	utils.Success(ctx, dashboard)
}
