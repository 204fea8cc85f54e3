package tokenstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/tokenstore"
	"github.com/stretchr/testify/require"
)

func testBundles() []*credentials.Bundle {
	return []*credentials.Bundle{
		{AccessToken: "access-only"},
		{AccessToken: "access", APIToken: "api"},
		{AccessToken: "access", APIToken: "api", RefreshToken: "refresh"},
		{AccessToken: "eyJhbGciOiJIUzI1NiJ9.e30.sig", APIToken: "eyJhbGciOiJIUzI1NiJ9.e30.sig"},
	}
}

func TestFileStore_SetThenGetRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "nested", "credentials.json"), "")

	for _, b := range testBundles() {
		require.NoError(t, store.Set(ctx, b))
		got, err := store.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, b, got)
	}
}

func TestFileStore_EmptyAndClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := tokenstore.NewFileStore(path, "authTokens")

	got, err := store.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
	require.NoError(t, store.Clear(ctx))

	require.NoError(t, store.Set(ctx, &credentials.Bundle{AccessToken: "a"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear(ctx))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStore_KeysShareFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	staging := tokenstore.NewFileStore(path, "staging")
	prod := tokenstore.NewFileStore(path, "prod")

	require.NoError(t, staging.Set(ctx, &credentials.Bundle{AccessToken: "s"}))
	require.NoError(t, prod.Set(ctx, &credentials.Bundle{AccessToken: "p"}))
	require.NoError(t, staging.Clear(ctx))

	got, err := prod.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "p", got.AccessToken)

	got, err = staging.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStore_CorruptFileReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := tokenstore.NewFileStore(path, "")
	got, err := store.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, store.Set(ctx, &credentials.Bundle{AccessToken: "fresh"}))
	got, err = store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "fresh", got.AccessToken)
}

func TestFileStore_SetNilRejected(t *testing.T) {
	store := tokenstore.NewFileStore(filepath.Join(t.TempDir(), "c.json"), "")
	require.Error(t, store.Set(context.Background(), nil))
}
