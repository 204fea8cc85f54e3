package tokenstore

import (
	"context"

	"github.com/jrsteele09/go-admin-console/credentials"
)

// DefaultKey is the storage key holding the serialized bundle.
const DefaultKey = "authTokens"

// Store persists the credential bundle under a single key.
// Writes are synchronous: a Get that follows a successful Set observes it.
type Store interface {
	// Get returns the stored bundle, or (nil, nil) when none is stored
	Get(ctx context.Context) (*credentials.Bundle, error)

	// Set replaces the stored bundle
	Set(ctx context.Context, bundle *credentials.Bundle) error

	// Clear removes the stored bundle; clearing an empty store is not an error
	Clear(ctx context.Context) error
}
