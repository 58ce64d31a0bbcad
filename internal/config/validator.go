package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("engine", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", EngineFirecrawl, EngineStatic, EngineHeadless:
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(FormatValidationErrors(errs), "\n  "))
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}
	return nil
}

// FormatValidationErrors renders validator errors as one line each
func FormatValidationErrors(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := e.StructNamespace()
		if idx := strings.Index(fieldName, "."); idx >= 0 {
			fieldName = fieldName[idx+1:]
		}
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return messages
}
