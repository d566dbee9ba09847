package handler

import (
	"net/http"

	"blackboxscan/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustomErrorMiddleware logs errors attached by handlers and serves the
// custom 404 page for unmatched routes.
func CustomErrorMiddleware(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("ErrorMiddleware")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				fields := []zap.Field{
					zap.Error(ginErr.Err),
					zap.Int("type", int(ginErr.Type)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				}
				if meta, ok := ginErr.Meta.(string); ok {
					fields = append(fields, zap.String("meta", meta))
				}
				logger.Error("Handler error", fields...)
			}
			if !c.Writer.Written() {
				c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return
		}

		status := c.Writer.Status()
		if status == http.StatusNotFound && !c.Writer.Written() {
			c.HTML(http.StatusNotFound, "404.html", web.NewPage("", "Page not found", nil))
			return
		}

		if status >= http.StatusInternalServerError {
			logger.Warn("Request resulted in server error status",
				zap.Int("status", status),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
		}
	}
}
