// Package respond renders the JSON envelope shared by every endpoint:
// {"message", "data"} on success and {"error", "details"} on failure.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipehub/backend/internal/apperror"
)

func Success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// Error writes the error envelope and aborts the chain. Server errors are
// logged with their cause through the request logger.
func Error(c *gin.Context, err error) {
	status := apperror.Status(err)
	message, details := apperror.Public(err)

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	body := gin.H{"error": message}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}

// BindJSON decodes a JSON object body into a generic payload map.
func BindJSON(c *gin.Context) (map[string]any, error) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}
