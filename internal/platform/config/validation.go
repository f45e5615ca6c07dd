package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names are reported by their koanf key so errors match the YAML.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	return v
}

// FieldProblem is one rejected configuration key.
type FieldProblem struct {
	Key     string // dotted koanf key, e.g. services.quote.base_url
	Message string
}

// ValidationError lists every rejected key of a Config.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.Message
	}

	return "config validation failed:\n  " + strings.Join(lines, "\n  ")
}

// Keys returns the rejected keys in validation order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		keys[i] = p.Key
	}

	return keys
}

// Validate checks c and returns a *ValidationError describing every problem.
// The service refuses to start on error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Problems: make([]FieldProblem, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		key := keyFromNamespace(fe.Namespace())
		verr.Problems = append(verr.Problems, FieldProblem{Key: key, Message: describe(key, fe)})
	}

	return verr
}

func describe(key string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "url":
		return key + " must be a valid URL"
	case "startswith":
		return fmt.Sprintf("%s must start with %q", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
	}
}

// keyFromNamespace turns "Config.services.quote.base_url" into "services.quote.base_url".
func keyFromNamespace(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}

	return strings.ToLower(ns)
}
