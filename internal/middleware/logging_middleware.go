package middleware

import (
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDKey ключ trace-ID в gin.Context и имя заголовка ответа
const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-Id"
)

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи
type RequestLogger struct {
	logger *logging.Logger
}

// NewRequestLogger создаёт middleware; nil logger означает логгер по умолчанию
func NewRequestLogger(logger *logging.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.Default()
	}
	return &RequestLogger{logger: logger}
}

// Handler возвращает middleware. Trace-ID берётся из спана OpenTelemetry,
// затем из заголовка запроса X-Trace-Id, иначе генерируется.
func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := requestTraceID(c)
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		rl.logger.Debug("[HTTP] ▶ %s %s ip=%s trace=%s", c.Request.Method, path, c.ClientIP(), traceID)

		c.Next()

		status := c.Writer.Status()
		line := "[HTTP] ◀ %s %s %d %s trace=%s"
		args := []interface{}{c.Request.Method, path, status, time.Since(start), traceID}
		switch {
		case status >= 500:
			rl.logger.Error(line, args...)
		case status >= 400:
			rl.logger.Warn(line, args...)
		default:
			rl.logger.Info(line, args...)
		}
	}
}

func requestTraceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	if id := c.GetHeader(TraceIDHeader); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}
