package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	StatusCode int         `json:"statusCode"`
	Error      string      `json:"error"`
	Message    string      `json:"message"`
	Timestamp  string      `json:"timestamp"`
	RequestID  string      `json:"requestId,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error writes an error body and returns it. The "error" field carries the
// standard status text, e.g. "Conflict" for 409.
func Error(ctx *gin.Context, status int, message string, details interface{}) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	body := ErrorBody{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:  ctx.GetString("request_id"),
		Details:    details,
	}
	ctx.JSON(status, body)
	return body
}

// Abort is Error followed by ctx.Abort, for use in middleware.
func Abort(ctx *gin.Context, status int, message string, details interface{}) {
	Error(ctx, status, message, details)
	ctx.Abort()
}
