package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/middleware"
	"github.com/cppla/vitalog/services"
	"github.com/cppla/vitalog/utils"
)

// AuthController handles registration, login and the caller's own profile.
type AuthController struct {
	auth    *services.AuthService
	logger  *zap.Logger
	version string
}

// NewAuthController creates a new controller instance.
func NewAuthController(auth *services.AuthService, logger *zap.Logger, version string) *AuthController {
	return &AuthController{auth: auth, logger: logger, version: version}
}

// Register creates an account and returns a token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidPayload(ctx)
		return
	}

	res, err := a.auth.Register(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	a.logger.Info("user registered", zap.Uint("user_id", res.UserID), zap.String("trace_id", utils.TraceID(ctx)))
	utils.Respond(ctx, http.StatusCreated, res)
}

// Login exchanges credentials for a token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req services.LoginInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidPayload(ctx)
		return
	}

	res, err := a.auth.Login(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	utils.Success(ctx, res)
}

// Health reports liveness of the auth endpoints.
func (a *AuthController) Health(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"status":    "ok",
		"service":   "auth",
		"timestamp": time.Now().UTC(),
		"version":   a.version,
	})
}

// Exists reports whether ?email= is registered.
func (a *AuthController) Exists(ctx *gin.Context) {
	exists, err := a.auth.UserExists(ctx.Request.Context(), ctx.Query("email"))
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	utils.Success(ctx, gin.H{"exists": exists})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	profile, err := a.auth.Profile(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	utils.Success(ctx, profile)
}

// UpdateProfile changes names and the onboarding flag.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req services.ProfileInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidPayload(ctx)
		return
	}
	profile, err := a.auth.UpdateProfile(ctx.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(ctx, a.logger, err)
		return
	}
	utils.Success(ctx, profile)
}

// Logout revokes the bearer token used for this request.
func (a *AuthController) Logout(ctx *gin.Context) {
	if _, ok := requireUser(ctx); !ok {
		return
	}
	expiresAt, _ := ctx.Get(middleware.ContextTokenExpiryKey)
	exp, _ := expiresAt.(time.Time)
	a.auth.Logout(ctx.Request.Context(), ctx.GetString(middleware.ContextTokenKey), exp)
	ctx.Status(http.StatusNoContent)
}
