// Package middlewares 存放系统中间件
package middlewares

import (
	"bytes"
	"io"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r responseBodyWriter) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Logger 记录请求日志，并为每个请求分配 X-Request-ID
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		// 获取 response 内容
		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		// 获取请求数据，凭证等二进制响应不记录内容
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		start := time.Now()
		c.Next()

		cost := time.Since(start)
		responseStatus := c.Writer.Status()

		logFields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", responseStatus),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
			zap.String("time", cast.ToString(cost.Milliseconds())+"ms"),
		}
		if c.Request.Method == "POST" || c.Request.Method == "PUT" || c.Request.Method == "DELETE" {
			logFields = append(logFields, zap.String("Request Body", string(requestBody)))
		}
		if c.Writer.Header().Get("Content-Type") != "application/pdf" {
			logFields = append(logFields, zap.String("Response Body", w.body.String()))
		}

		switch {
		case responseStatus > 400 && responseStatus <= 499:
			logger.Warn("HTTP Warning "+cast.ToString(responseStatus), logFields...)
		case responseStatus >= 500 && responseStatus <= 599:
			logger.Error("HTTP Error "+cast.ToString(responseStatus), logFields...)
		default:
			logger.Debug("HTTP Access Log", logFields...)
		}
	}
}
