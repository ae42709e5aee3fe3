package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"festreg/internal/pkg/response"
)

// ErrorLogger logs request failures and recovers from panics. Webhook and
// callback handlers rely on it never letting a panic turn into a dropped
// connection.
func ErrorLogger(loggerf func(format string, args ...interface{})) gin.HandlerFunc {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				logRequestError(c, loggerf, start, "panic", err.Error())
				loggerf("level=error msg=panic stack=%s", string(debug.Stack()))
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				c.Abort()
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(c, loggerf, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status()))
				}
				return
			}

			for _, err := range c.Errors {
				logRequestError(c, loggerf, start, fmt.Sprintf("%v", err.Type), err.Error())
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, loggerf func(format string, args ...interface{}), start time.Time, errType, message string) {
	loggerf(
		"level=error msg=request_error type=%s status=%d method=%s path=%s query=%s client_ip=%s latency=%s error=%q",
		errType,
		c.Writer.Status(),
		c.Request.Method,
		c.Request.URL.Path,
		c.Request.URL.RawQuery,
		c.ClientIP(),
		time.Since(start),
		message,
	)
}
