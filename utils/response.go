package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform body of every non-2xx API response.
type ErrorResponse struct {
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	TraceID    string    `json:"traceId"`
	Timestamp  time.Time `json:"timestamp"`
	Details    []string  `json:"details,omitempty"`
}

// Respond writes data as JSON with the given status code.
func Respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, data)
}

// Success returns a 200 response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, data)
}

// Error writes the error envelope and aborts the handler chain.
func Error(ctx *gin.Context, status int, message string, details ...string) {
	ctx.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		TraceID:    TraceID(ctx),
		Timestamp:  time.Now().UTC(),
		Details:    details,
	})
}
