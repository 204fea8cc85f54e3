package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin console session layer
var (
	// Credential errors
	ErrNoCredentials = errors.New("no credentials stored")
	ErrOpaqueToken   = errors.New("access token is not a JWT")

	// Backend errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrServerRejected = errors.New("server rejected request")

	// Transport errors
	ErrUnreachable = errors.New("server unreachable")
	ErrTimeout     = errors.New("connection timeout")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoCandidates  = errors.New("no profile endpoints configured")
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
