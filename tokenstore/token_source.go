package tokenstore

import (
	"context"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	ctx   context.Context
	store Store
}

// TokenSource exposes the store's primary token as an oauth2.TokenSource.
// The store is read on every call so a login or logout is visible to the next
// request. Returns ErrNoCredentials when nothing usable is stored.
func TokenSource(ctx context.Context, store Store) oauth2.TokenSource {
	return storeTokenSource{ctx: ctx, store: store}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	bundle, err := s.store.Get(s.ctx)
	if err != nil {
		return nil, err
	}
	if !bundle.Valid() {
		return nil, apperrors.ErrNoCredentials
	}
	return &oauth2.Token{
		AccessToken:  bundle.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: bundle.RefreshToken,
	}, nil
}
