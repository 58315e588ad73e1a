// Package validation validates request payloads and reports failures as
// field-keyed messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gogofit/backend/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// filled rejects present-but-blank strings.
		_ = validate.RegisterValidation("filled", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		// enum accepts values that report themselves as members of their set.
		_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			v, ok := fl.Field().Interface().(interface{ Valid() bool })
			return ok && v.Valid()
		})
	})
	return validate
}

// Struct validates v. It returns nil or a *apperr.Error of kind validation.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("Validation failed", err)
	}

	fields := apperr.Fields{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), message(fe))
	}
	return apperr.Validation(fields)
}

// Merge folds extra field errors into the result of Struct. Errors that
// are not validation errors are returned unchanged.
func Merge(err error, extra apperr.Fields) error {
	if len(extra) == 0 {
		return err
	}
	fields := apperr.Fields{}
	if err != nil {
		var e *apperr.Error
		if !errors.As(err, &e) || e.Kind != apperr.KindValidation {
			return err
		}
		for k, v := range e.Fields {
			fields[k] = append(fields[k], v...)
		}
	}
	for k, v := range extra {
		fields[k] = append(fields[k], v...)
	}
	return apperr.Validation(fields)
}

// Label turns a field key into the wording used in messages.
func Label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	numeric := isNumeric(fe.Kind())

	switch fe.Tag() {
	case "required", "filled":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("The %s field must be at least %s.", label, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("The %s field must not be greater than %s.", label, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", label)
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", label)
	case "enum":
		return fmt.Sprintf("The selected %s is invalid.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// TypeMessage describes a JSON value of the wrong type for field.
func TypeMessage(field string, t reflect.Type) string {
	label := Label(field)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		return fmt.Sprintf("The %s field must be a number.", label)
	case isNumeric(t.Kind()):
		return fmt.Sprintf("The %s field must be an integer.", label)
	case t.Kind() == reflect.String:
		return fmt.Sprintf("The %s field must be a string.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

// EnumError is returned while decoding a closed set of string values.
type EnumError struct {
	Field string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *EnumError) Message() string {
	return fmt.Sprintf("The selected %s is invalid.", Label(e.Field))
}
