package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns, success or error.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// OK writes a 200 envelope with the given message and payload.
func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
	})
}

// Fail writes an error envelope. Service errors keep their status code and
// message; anything else is reported as a generic internal error.
func Fail(c *gin.Context, err error) {
	appErr, ok := err.(*Error)
	if !ok {
		appErr = Internal("Internal server error", err)
	}
	c.JSON(appErr.Code, Response{
		StatusCode: appErr.Code,
		Message:    appErr.Message,
	})
}
