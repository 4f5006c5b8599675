package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	return &CustomValidator{v: validator.New()}
}

// Validate performs struct validation. The first failing field is reported
// in a caller-readable form since handlers echo it back in error bodies.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("field %s failed %s=%s validation", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("field %s failed %s validation", fe.Field(), fe.Tag())
	}
	return err
}
