package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general")...)
	}

	// Optional sections fall back to defaults
	if c.Network != nil {
		if err := validate.Struct(c.Network); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "network")...)
		}
	}
	if c.Cache != nil {
		if err := validate.Struct(c.Cache); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "cache")...)
		}
	}
	if c.Security != nil {
		if err := validate.Struct(c.Security); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "security")...)
		}
		validationErrors = append(validationErrors, c.validateCiphers()...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateCiphers() ValidationErrors {
	var validationErrors ValidationErrors
	seen := make(map[string]bool)

	for _, name := range c.Security.Ciphers {
		if seen[name] {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "security.ciphers",
				Message:   "duplicate cipher: " + name,
			})
		}
		seen[name] = true
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// Field() is the TOML name because of the registered TagNameFunc
				fieldPath = fieldPrefix + "." + e.Field()
			}

			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
