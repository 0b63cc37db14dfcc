package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterValidation("provider", validateProvider)
	v.RegisterValidation("log_format", validateLogFormat)
	v.RegisterValidation("log_level", validateLogLevel)
	v.RegisterValidation("warehouse_driver", validateWarehouseDriver)
	v.RegisterValidation("theme", validateTheme)

	return &Validator{
		validate: v,
	}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	if config.Version == "" {
		config.Version = "1.0"
	}
	if err := v.Struct(config); err != nil {
		return err
	}

	seen := make(map[string]bool, len(config.Warehouses))
	for _, w := range config.Warehouses {
		if seen[w.Name] {
			return ValidationError{Field: "Warehouses", Message: fmt.Sprintf("duplicate warehouse name %q", w.Name), Value: w.Name}
		}
		seen[w.Name] = true
	}
	repos := make(map[string]bool, len(config.Repositories))
	for _, r := range config.Repositories {
		if r.Name == "." || r.Name == ".." || strings.ContainsAny(r.Name, `/\`) {
			return ValidationError{Field: "Repositories", Message: fmt.Sprintf("repository name %q must be a single folder name", r.Name), Value: r.Name}
		}
		if repos[r.Name] {
			return ValidationError{Field: "Repositories", Message: fmt.Sprintf("duplicate repository name %q", r.Name), Value: r.Name}
		}
		repos[r.Name] = true
	}
	return nil
}

// Struct validates any struct carrying validate tags and reports the first
// failure as a ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		return ValidationError{
			Field:   e.Namespace(),
			Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
			Value:   e.Value(),
		}
	}
	return err
}

// validateProvider validates model provider values
func validateProvider(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slices.Contains([]string{"anthropic", "openai"}, value)
}

// validateLogFormat validates log format values
func validateLogFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slices.Contains([]string{"json", "text"}, value)
}

// validateLogLevel validates log level values
func validateLogLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, value)
}

// validateWarehouseDriver validates warehouse driver names
func validateWarehouseDriver(fl validator.FieldLevel) bool {
	return slices.Contains([]string{DriverSQLite, DriverSQLServer}, fl.Field().String())
}

// validateTheme validates theme values
func validateTheme(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slices.Contains([]string{string(ThemeLight), string(ThemeDark), string(ThemeSystem)}, value)
}
