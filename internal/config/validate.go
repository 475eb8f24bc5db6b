package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/lyrictype/internal/model"
)

var flagNames = map[string]string{
	"APIBaseURL":    "--api-url",
	"APITimeout":    "--api-timeout",
	"SearchLimit":   "--search-limit",
	"PrefetchCount": "--prefetch",
	"LowWater":      "--low-water",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a merged config and reports problems in terms of flags.
func Validate(cfg model.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "\n"))
}

func describe(fe validator.FieldError) string {
	name, ok := flagNames[fe.Field()]
	if !ok {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", name)
	case "url":
		return fmt.Sprintf("%s must be an absolute URL", name)
	case "gt":
		return fmt.Sprintf("%s must be > %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", name, flagNames[fe.Param()])
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}
