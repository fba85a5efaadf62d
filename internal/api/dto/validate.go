package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate checks struct tags on a request payload.
func Validate(payload any) error {
	return validate.Struct(payload)
}
