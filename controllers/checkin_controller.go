package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/services"
	"github.com/cppla/vitalog/utils"
)

const defaultRecentDays = 7

// CheckinController handles daily check-in endpoints.
type CheckinController struct {
	checkins *services.CheckinService
	logger   *zap.Logger
}

// NewCheckinController creates a new controller instance.
func NewCheckinController(checkins *services.CheckinService, logger *zap.Logger) *CheckinController {
	return &CheckinController{checkins: checkins, logger: logger}
}

func (c *CheckinController) bind(ctx *gin.Context) (uint, models.CheckinInput, bool) {
	var in models.CheckinInput
	userID, ok := requireUser(ctx)
	if !ok {
		return 0, in, false
	}
	if err := ctx.ShouldBindJSON(&in); err != nil {
		invalidPayload(ctx)
		return 0, in, false
	}
	return userID, in, true
}

// Upsert writes the check-in for the body's date: 201 when created, 200 when replaced.
func (c *CheckinController) Upsert(ctx *gin.Context) {
	userID, in, ok := c.bind(ctx)
	if !ok {
		return
	}
	rec, created, err := c.checkins.CreateOrUpdate(ctx.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.Respond(ctx, status, rec.Response())
}

// Create inserts a check-in and returns 409 if the date already has one.
func (c *CheckinController) Create(ctx *gin.Context) {
	userID, in, ok := c.bind(ctx)
	if !ok {
		return
	}
	rec, err := c.checkins.Create(ctx.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, rec.Response())
}

// GetByDate returns the check-in for :date.
func (c *CheckinController) GetByDate(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	rec, err := c.checkins.GetByDate(ctx.Request.Context(), userID, ctx.Param("date"))
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	utils.Success(ctx, rec.Response())
}

// GetAllByDate returns every check-in for :date as a list.
func (c *CheckinController) GetAllByDate(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	records, err := c.checkins.GetAllByDate(ctx.Request.Context(), userID, ctx.Param("date"))
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	utils.Success(ctx, models.CheckinResponses(records))
}

// GetLatestByDate returns the most recent check-in for :date.
func (c *CheckinController) GetLatestByDate(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	rec, err := c.checkins.GetLatestByDate(ctx.Request.Context(), userID, ctx.Param("date"))
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	utils.Success(ctx, rec.Response())
}

// Recent lists check-ins of the last ?days= days, newest first.
func (c *CheckinController) Recent(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	days, ok := queryDays(ctx, defaultRecentDays)
	if !ok {
		return
	}
	records, err := c.checkins.ListRecent(ctx.Request.Context(), userID, days)
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	utils.Success(ctx, models.CheckinResponses(records))
}

// GetByID returns check-in :id.
func (c *CheckinController) GetByID(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	rec, err := c.checkins.GetByID(ctx.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	utils.Success(ctx, rec.Response())
}

// Update replaces the metrics of check-in :id.
func (c *CheckinController) Update(ctx *gin.Context) {
	userID, in, ok := c.bind(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	rec, err := c.checkins.Update(ctx.Request.Context(), userID, id, in)
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	utils.Success(ctx, rec.Response())
}

// Delete removes check-in :id.
func (c *CheckinController) Delete(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	deleted, err := c.checkins.Delete(ctx.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(ctx, c.logger, err)
		return
	}
	if !deleted {
		respondServiceError(ctx, c.logger, services.ErrCheckinNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}
