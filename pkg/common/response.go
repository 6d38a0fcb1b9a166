package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope used by every JSON endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SuccessResponse writes a 200 response
func SuccessResponse(c *gin.Context, data interface{}) {
	SuccessResponseWithStatus(c, http.StatusOK, data)
}

// CreatedResponse writes a 201 response
func CreatedResponse(c *gin.Context, data interface{}) {
	SuccessResponseWithStatus(c, http.StatusCreated, data)
}

// SuccessResponseWithStatus writes a successful response with a custom status
func SuccessResponseWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse writes an error response
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    status,
			Message: message,
		},
	})
}

// AppErrorResponse writes an AppError. Server-side failures never expose the cause.
func AppErrorResponse(c *gin.Context, err *AppError) {
	message := err.Message
	if err.Code >= http.StatusInternalServerError && err.Code != http.StatusServiceUnavailable {
		message = http.StatusText(err.Code)
	}
	if err.Err != nil {
		_ = c.Error(err.Err)
	}
	ErrorResponse(c, err.Code, message)
}

// ValidationErrorResponse writes a 400 response listing the offending fields
func ValidationErrorResponse(c *gin.Context, message string, fields map[string]string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    http.StatusBadRequest,
			Message: message,
			Fields:  fields,
		},
	})
}
