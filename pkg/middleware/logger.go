package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loan-broker/pkg/contextkeys"
	"loan-broker/pkg/metrics"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger присваивает запросу идентификатор, пишет строку лога
// и время обработки в метрики.
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Request().Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(requestIDHeader, requestID)
			ctx := context.WithValue(c.Request().Context(), contextkeys.RequestIDKey, requestID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("logger", logger.With(zap.String("request_id", requestID)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			elapsed := time.Since(start)
			if m != nil {
				m.RecordRequestDuration(c.Request().Method, c.Path(), strconv.Itoa(status), elapsed)
			}
			logger.Info("HTTP",
				zap.String("request_id", requestID),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
			)
			return nil
		}
	}
}
