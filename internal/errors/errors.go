package errors

import (
	"errors"
	"fmt"
)

// Common error types for the travels API client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Token errors
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrSessionExpired = errors.New("session expired")
	ErrMalformedToken = errors.New("malformed token")

	// Session persistence errors
	ErrUnsealSession = errors.New("unable to unseal session")

	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidConfig  = errors.New("invalid configuration")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers only need this package
func New(text string) error {
	return errors.New(text)
}
