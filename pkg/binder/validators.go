package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/grotesquebooks/grotesque/pkg/stars"
)

var (
	dateRE = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
)

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. The empty string is allowed so the validator can be used to clear
// out values; add `ne=` to the validate tag when the value is required.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRE.MatchString(value)
}

// ratingValidator accepts star ratings: 0.0 through 5.0 in half-star steps.
func ratingValidator(fl validator.FieldLevel) bool {
	_, err := stars.Render(fl.Field().Float())
	return err == nil
}
