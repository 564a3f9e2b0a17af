package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError represents a form that breaks one of its native input constraints
type ValidationError struct {
	Code    string
	Message string
	Fields  map[string]string // json field name -> failed rule
}

func (e *ValidationError) Error() string {
	return e.Message
}

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json field names so errors line up with what the caller submitted
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateForm checks a form struct against its `validate` tags
func ValidateForm(form interface{}) error {
	err := formValidator().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	fields := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	sort.Strings(names)

	return &ValidationError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("Invalid fields: %s", strings.Join(names, ", ")),
		Fields:  fields,
	}
}
