package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account deactivated")

	// ErrPasswordChangeRequired is not a failure: login succeeded but the
	// account is flagged, so no tokens are issued until the password is
	// changed.
	ErrPasswordChangeRequired = errors.New("password change required")
)
