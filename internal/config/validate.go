package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks c for missing or malformed settings. The returned error
// wraps ErrConfigInvalid and names every offending key.
func Validate(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(ErrConfigInvalid, err.Error())
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return errors.Wrap(ErrConfigInvalid, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	key = strings.ReplaceAll(key, "Endpoint.", "")
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return key + " is required"
	case "min", "max":
		return fmt.Sprintf("%s must be within range (got %v)", key, fe.Value())
	case "excludesall":
		return fmt.Sprintf("%s must be a bare file name (got %v)", key, fe.Value())
	}
	return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
}
