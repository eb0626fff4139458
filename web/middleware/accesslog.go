package middleware

import (
	"net/http"
	"time"

	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/metrics"
	"github.com/nbazone/nbazone/web/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// AccessLog tags the request with an id and logs it once it completes.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		metrics.HTTPRequestsTotal.Inc()
		if status >= http.StatusInternalServerError {
			metrics.HTTPServerErrors.Inc()
		}

		user := "-"
		if p := session.GetPrincipal(c); p != nil {
			user = p.Username
		}
		logger.Infof("%s %s %s %d %s ip=%s user=%s",
			id, c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.ClientIP(), user)
	}
}
