// Package dto holds the JSON shapes the API reads and writes, and the
// validation applied to incoming bodies before they reach a service.
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"pomodoro/internal/apperror"

	"github.com/go-playground/validator/v10"
)

const (
	maxBodyBytes = 1 << 20
	// bcrypt rejects passwords longer than this many bytes
	maxPasswordBytes = 72
)

var (
	validate = newValidator()
	hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})

	return v
}

// Decode reads a single JSON document from r into dst and validates it.
// Malformed bodies are a 400, failed validation is a 422.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.BadRequest("Request body must not be empty")
		}

		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperror.Validation("Request validation failed", []apperror.FieldError{{
				Field:   typeErr.Field,
				Tag:     "type",
				Message: fmt.Sprintf("must be of type %s", typeErr.Type),
			}})
		}

		return apperror.BadRequest("Malformed JSON: " + err.Error())
	}

	if dec.More() {
		return apperror.BadRequest("Request body must contain a single JSON object")
	}

	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}

	return apperror.Validation("Request validation failed", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " characters or items"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " characters or items"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "rgbhex":
		return "must be a color like #RRGGBB"
	case "bcryptmax":
		return fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	case "uuid":
		return "must be a UUID"
	}

	return "failed on " + fe.Tag()
}
