package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) users.Profile {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return users.FromAny(v)
}

func TestProfile_Accessors(t *testing.T) {
	p := decode(t, `{"id": 42, "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
		"avatar": "storage/avatars/ada.png", "roles": ["admin", {"name": "support"}]}`)

	require.Equal(t, "42", p.ID())
	require.Equal(t, "Ada Lovelace", p.DisplayName())
	require.Equal(t, "ada@example.com", p.Email())
	require.Equal(t, "storage/avatars/ada.png", p.Avatar())
	require.Equal(t, []string{"admin", "support"}, p.Roles())
	require.True(t, p.HasRole("SUPPORT"))
	require.False(t, p.HasRole("finance"))
}

func TestProfile_DisplayNameFallsBackToEmail(t *testing.T) {
	p := decode(t, `{"email": "ops@example.com", "role": "super_admin"}`)
	require.Equal(t, "ops@example.com", p.DisplayName())
	require.Equal(t, []string{"super_admin"}, p.Roles())
}

func TestFromAny_NonObject(t *testing.T) {
	require.Nil(t, users.FromAny("just a string"))
	require.Nil(t, users.FromAny([]any{1, 2}))
}
