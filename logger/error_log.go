package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// LogHTTPError logs an error arising from an HTTP request with request
// context attached. Used by the error-handler middleware.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	log := GetLogger()

	fields := []interface{}{
		"timestamp", time.Now().UTC(),
		"status_code", statusCode,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"client_ip", c.ClientIP(),
		"request_id", c.GetString("request_id"),
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}

	if statusCode >= 500 {
		log.Errorw(message, fields...)
	} else {
		log.Warnw(message, fields...)
	}
}
