package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	principalIDRegex = regexp.MustCompile(`^[a-zA-Z0-9@._-]+$`)
	itemIDRegex      = regexp.MustCompile(`^[a-zA-Z0-9:/._-]+$`)
)

// queryValidator rejects queries that contain no letters or digits at
// all, since tokenization would leave nothing to match.
func queryValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return strings.ContainsFunc(val, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

func principalValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Addr().Interface().(*string)
	if !ok {
		return false
	}

	if val == nil || *val == "" {
		return true
	}

	return principalIDRegex.MatchString(*val)
}

func itemIDValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return itemIDRegex.MatchString(val)
}
