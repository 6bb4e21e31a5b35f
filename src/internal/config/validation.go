package config

import (
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/maksimkurb/netpolicy/src/internal/ciphers"
	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

var (
	languageRangeRegexp = regexp.MustCompile(`^(\*|[A-Za-z]{1,8}(-[A-Za-z0-9]{1,8})*)(\s*;\s*q\s*=\s*(0(\.[0-9]{0,3})?|1(\.0{0,3})?))?$`)
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	case "accept_language":
		return "must be a comma-separated list of language ranges with optional q-values (e.g. en-US,en;q=0.8)"
	case "useragent_id":
		return "must consist only of lowercase letters, numbers, '.', '_' and '-'"
	case "cipher_name":
		return "must be \"default\" or a TLS cipher suite name supported by the platform"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	FieldPath string // Dot-notation field path (e.g., "network.do_not_track")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("hostport_or_empty", validateHostPortOrEmpty); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("accept_language", validateAcceptLanguage); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("useragent_id", validateUserAgentID); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("cipher_name", validateCipherName); err != nil {
		panic(err)
	}

	// Report fields by their TOML name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validator: host:port format or empty
func validateHostPortOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.SplitHostPort(value)
	return err == nil
}

// Custom validator: Accept-Language header value
func validateAcceptLanguage(fl validator.FieldLevel) bool {
	return IsValidAcceptLanguage(fl.Field().String())
}

// IsValidAcceptLanguage checks a comma-separated list of language ranges.
// An empty value is valid and disables the header.
func IsValidAcceptLanguage(value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	for _, part := range strings.Split(value, ",") {
		m := languageRangeRegexp.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return false
		}
		if m[1] == "*" {
			continue
		}
		if _, err := language.Parse(m[1]); err != nil {
			return false
		}
	}
	return true
}

func validateUserAgentID(fl validator.FieldLevel) bool {
	return useragents.IsValidIdentifier(fl.Field().String())
}

func validateCipherName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == CiphersDefault {
		return true
	}
	_, ok := ciphers.Lookup(name)
	return ok
}
