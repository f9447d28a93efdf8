package utils

import (
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextTraceIDKey is where the trace middleware stores the request's correlation id.
const ContextTraceIDKey = "trace_id"

// TraceID returns the correlation id of the current request, or "" if none was set.
func TraceID(ctx *gin.Context) string {
	return ctx.GetString(ContextTraceIDKey)
}

// Ginzap logs each request after it completes.
func Ginzap(logger *zap.Logger, timeFormat string, utc bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		query := ctx.Request.URL.RawQuery
		ctx.Next()

		end := time.Now()
		if utc {
			end = end.UTC()
		}

		fields := []zap.Field{
			zap.Int("status", ctx.Writer.Status()),
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", ctx.ClientIP()),
			zap.String("user-agent", ctx.Request.UserAgent()),
			zap.String("trace_id", TraceID(ctx)),
			zap.String("time", end.Format(timeFormat)),
			zap.Duration("latency", end.Sub(start)),
		}

		if len(ctx.Errors) > 0 {
			for _, e := range ctx.Errors.Errors() {
				logger.Error(e, fields...)
			}
			return
		}
		logger.Info(path, fields...)
	}
}

// RecoveryWithZap turns panics into a logged 500 with the standard error envelope.
func RecoveryWithZap(logger *zap.Logger, stack bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// A broken client connection is not worth a stack trace.
				var brokenPipe bool
				if ne, ok := err.(*net.OpError); ok {
					if se, ok := ne.Err.(*os.SyscallError); ok {
						msg := strings.ToLower(se.Error())
						brokenPipe = strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
					}
				}

				httpRequest, _ := httputil.DumpRequest(ctx.Request, false)
				fields := []zap.Field{
					zap.Any("error", err),
					zap.String("request", redactAuthorization(string(httpRequest))),
					zap.String("trace_id", TraceID(ctx)),
				}
				if brokenPipe {
					logger.Error(ctx.Request.URL.Path, fields...)
					ctx.Abort()
					return
				}
				if stack {
					fields = append(fields, zap.String("stack", string(debug.Stack())))
				}
				logger.Error("[Recovery from panic]", fields...)
				Error(ctx, http.StatusInternalServerError, "an unexpected error occurred")
				ctx.Abort()
			}
		}()
		ctx.Next()
	}
}

func redactAuthorization(dump string) string {
	lines := strings.Split(dump, "\r\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "authorization:") {
			lines[i] = "Authorization: [redacted]"
		}
	}
	return strings.Join(lines, "\r\n")
}
