package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"flagpost/pkg/logging"
)

func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceIDMiddleware copies the active trace id into the request context so
// log lines can be joined with traces. It must run after GinMiddleware.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID := TraceIDFromContext(c.Request.Context()); traceID != "" {
			c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), traceID))
		}
		c.Next()
	}
}
