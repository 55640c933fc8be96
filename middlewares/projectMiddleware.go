package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nirmantrack/sitebooks_backend/utils"
)

// CorrelationMiddleware attaches a correlation id to every request
// context, generating one when the caller did not send one.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// ProjectMiddleware scopes the request to a project. Every data-bearing
// route requires the X-Project-Id header; rows are partitioned by it all
// the way down.
func ProjectMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId := c.GetHeader("X-Project-Id")
		if projectId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-Project-Id header is required"})
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(utils.SetProjectIdInContext(c.Request.Context(), projectId))
		c.Next()
	}
}
