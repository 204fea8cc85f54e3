package userresolve

import (
	"context"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/internal/config"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Getter is the part of the API client the resolver needs.
type Getter interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
}

// Resolver finds the current user's profile by probing candidate endpoints in
// order. Backend deployments disagree on the route name, so a 404 moves on to
// the next candidate instead of failing the session.
type Resolver struct {
	client     Getter
	candidates []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCandidates replaces the default probe order.
func WithCandidates(paths ...string) Option {
	return func(r *Resolver) {
		r.candidates = append([]string(nil), paths...)
	}
}

func New(client Getter, options ...Option) (*Resolver, error) {
	if client == nil {
		return nil, errors.New("[userresolve.New] client is required")
	}
	r := &Resolver{
		client:     client,
		candidates: append([]string(nil), config.DefaultProfileEndpoints...),
	}
	for _, opt := range options {
		opt(r)
	}
	if len(r.candidates) == 0 {
		return nil, apperrors.ErrNoCandidates
	}
	return r, nil
}

// Candidates returns the probe order.
func (r *Resolver) Candidates() []string {
	return append([]string(nil), r.candidates...)
}

// Resolve returns the payload of the first candidate that answers. A 404 on
// the last candidate, or any non-404 failure, ends the probe with that error.
func (r *Resolver) Resolve(ctx context.Context) (users.Profile, error) {
	for i, path := range r.candidates {
		resp, err := r.client.Get(ctx, path)
		if err != nil {
			if apiclient.IsNotFound(err) && i < len(r.candidates)-1 {
				log.Debug().Str("endpoint", path).Msg("Profile endpoint not found, trying next")
				continue
			}
			return nil, errors.Wrapf(err, "[Resolver.Resolve] %s", path)
		}

		payload, err := resp.JSON()
		if err != nil {
			return nil, errors.Wrapf(err, "[Resolver.Resolve] %s", path)
		}
		profile := users.FromAny(payload)
		if profile == nil {
			profile = users.Profile{}
		}
		return profile, nil
	}
	return nil, apperrors.ErrNoCandidates
}
