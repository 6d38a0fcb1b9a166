package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fundraising/pkg/common"
	"github.com/richxcame/fundraising/pkg/validation"
)

// ValidateJSON binds the JSON body into req and validates it
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// RespondWithValidationError sends a standardized validation error response
func RespondWithValidationError(c *gin.Context, err error) {
	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		common.ValidationErrorResponse(c, "validation failed", valErr.Errors)
		return
	}
	common.ValidationErrorResponse(c, "invalid request body", map[string]string{"body": err.Error()})
}

// ValidateAndBind validates and binds request to the provided struct.
// It writes the error response itself and returns false on failure.
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	if err := ValidateJSON(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}
