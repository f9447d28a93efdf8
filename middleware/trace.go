package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/vitalog/utils"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// Trace adopts the caller's X-Request-ID or generates one, and echoes it back.
func Trace() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen || !printable(id) {
			id = uuid.NewString()
		}
		ctx.Set(utils.ContextTraceIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

func printable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
