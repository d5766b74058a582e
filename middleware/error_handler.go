package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DealDocs/dealdocs-backend/errors"
	"github.com/DealDocs/dealdocs-backend/logger"
)

type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler converts errors attached to the gin context into structured
// JSON responses. AppErrors carry their own status; anything else is a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if appError, ok := err.(*errors.AppError); ok {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			c.JSON(statusCode, ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Details: appError.Detail,
				Code:    strconv.Itoa(statusCode),
			})
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal server error",
			Code:    strconv.Itoa(http.StatusInternalServerError),
		})
	}
}
