package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape for every failed request: status code,
// human-readable message, timestamp, and the request id for correlation.
// Validation failures additionally carry a field->message map in Errors.
type ErrorBody struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id,omitempty"`
}

// MessageBody is a minimal success body for operations without a resource payload.
type MessageBody struct {
	Message string `json:"message"`
}

func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, ErrorBody{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
	})
}

// AbortError writes the error body and aborts the handler chain (for middleware).
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
	})
}

// ValidationError writes a 400 with per-field details.
func ValidationError(c *gin.Context, details map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorBody{
		Status:    http.StatusBadRequest,
		Message:   "validation failed",
		Errors:    details,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
	})
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}
