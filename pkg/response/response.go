package response

import (
	"log"
	"net/http"

	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request-id middleware writes to.
const RequestIDKey = "request_id"

// Success writes the {success:true, data} envelope.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Error writes the {success:false, error} envelope with the status mapped from err.
func Error(c *gin.Context, err error) {
	ErrorWithStatus(c, apperror.MapErrorToStatus(err), err)
}

// ErrorWithStatus is Error for handlers that must override the mapped status.
func ErrorWithStatus(c *gin.Context, code int, err error) {
	// Log internal errors
	if code >= http.StatusInternalServerError {
		log.Printf("[Internal Error] request_id=%s %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(code, gin.H{"success": false, "error": err.Error()})
}
