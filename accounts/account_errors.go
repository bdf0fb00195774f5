package accounts

import "errors"

var (
	PasswordsDontMatchErr = errors.New("passwords do not match")
	EmailRequiredErr      = errors.New("email is required")
	InvalidEmailErr       = errors.New("invalid email address")
	ResetLinkInvalidErr   = errors.New("reset link is invalid or has expired")
)
