package session

import (
	"context"

	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/users"
)

// Status is the observable session state.
type Status string

const (
	StatusBootstrapping  Status = "bootstrapping"
	StatusAnonymous      Status = "anonymous"
	StatusProfileKnown   Status = "profile_known"
	StatusProfileUnknown Status = "profile_unknown"
)

// State is a point-in-time copy of the session.
type State struct {
	Loading     bool
	Credentials *credentials.Bundle
	Profile     users.Profile
}

func (st State) Status() Status {
	switch {
	case st.Loading:
		return StatusBootstrapping
	case st.Credentials == nil:
		return StatusAnonymous
	case st.Profile != nil:
		return StatusProfileKnown
	}
	return StatusProfileUnknown
}

// Authenticated reports whether a bundle is present, regardless of profile.
func (st State) Authenticated() bool {
	return st.Credentials != nil
}

// AuthError is returned when login or registration is rejected. Message is
// suitable for showing to the user.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type contextKey struct{}

// WithService attaches the service to ctx for request handlers.
func WithService(ctx context.Context, s *Service) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the service attached by WithService. Callers must
// handle ok == false; there is no inert fallback.
func FromContext(ctx context.Context) (*Service, bool) {
	s, ok := ctx.Value(contextKey{}).(*Service)
	return s, ok && s != nil
}
