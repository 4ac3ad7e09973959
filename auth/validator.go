package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginRequest mirrors the login form. The password is optional because the
// very first login is allowed to install the shared secret; length bounds
// match the stored column sizes.
type LoginRequest struct {
	Username string `validate:"required,max=80"`
	Password string `validate:"omitempty,max=100"`
}

func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}
