package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RespondError writes the {statusCode, message} envelope. Production
// responses carry only the sanitized message; elsewhere the raw message plus
// request path and timestamp come along for debugging.
func RespondError(c *gin.Context, status int, err error, production bool) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if production {
		c.JSON(status, gin.H{
			"statusCode": status,
			"message":    SanitizeMessage(msg),
		})
		return
	}
	c.JSON(status, gin.H{
		"statusCode": status,
		"message":    msg,
		"path":       c.Request.URL.Path,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
