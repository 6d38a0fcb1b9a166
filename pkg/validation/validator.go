package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return IsCurrencyCode(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// IsCurrencyCode reports whether code is three uppercase ASCII letters
func IsCurrencyCode(code string) bool {
	return currencyCodePattern.MatchString(code)
}

// ValidateStruct validates s against its `validate` tags
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return NewValidationError(fieldErrs)
	}
	return err
}
