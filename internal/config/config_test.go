package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/internal/config"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestNew_DevDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_ORIGIN", "http://localhost:8090")

	c, err := config.New()
	require.NoError(t, err)
	require.True(t, c.IsDev())
	require.Equal(t, "http://localhost:8090/api", c.GetAPIBaseURL())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.DefaultProfileEndpoints, c.GetProfileEndpoints())
	require.Equal(t, config.StoreFile, c.GetTokenStore())
	require.Equal(t, "authTokens", c.GetTokenKey())
	require.Equal(t, ":8090", c.GetPort())
}

func TestNew_ProductionRequiresAbsoluteBase(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("API_BASE_URL", "")

	_, err := config.New()
	require.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	c, err := config.New()
	require.NoError(t, err)
	require.False(t, c.IsDev())
	require.Equal(t, "https://api.example.com/v1", c.GetAPIBaseURL())
}

func TestNew_ProfileEndpointsOverride(t *testing.T) {
	t.Setenv("PROFILE_ENDPOINTS", "/me, /whoami ,")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, []string{"/me", "/whoami"}, c.GetProfileEndpoints())
}

func TestNew_RedisStoreNeedsURL(t *testing.T) {
	t.Setenv("TOKEN_STORE", "redis")
	t.Setenv("REDIS_URL", "")

	_, err := config.New()
	require.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	t.Setenv("TOKEN_STORE", "floppy")
	_, err = config.New()
	require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestResolveAPIBase(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		origin  string
		want    string
		wantErr bool
	}{
		{name: "relative", base: "/api", origin: "http://localhost:3000", want: "http://localhost:3000/api"},
		{name: "absolute", base: "https://api.example.com/", origin: "", want: "https://api.example.com"},
		{name: "relative without origin", base: "/api", origin: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.ResolveAPIBase(tt.base, tt.origin)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
