package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	commonerrors "chatwire/internal/common/errors"
)

// validationError maps validator failures to the exact client-facing
// messages: a missing field wins over a short password, matching the order
// the fields are validated in.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return commonerrors.ErrFieldsRequired
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return commonerrors.ErrFieldsRequired
		}
	}

	for _, fe := range verrs {
		if fe.Tag() == "min" && fe.Field() == "Password" {
			return commonerrors.ErrPasswordTooShort
		}
	}

	return commonerrors.ErrFieldsRequired
}
