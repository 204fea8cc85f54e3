package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/jrsteele09/go-admin-console/tokenstore"
	"github.com/jrsteele09/go-admin-console/tokenstore/memstore"
	"github.com/jrsteele09/go-admin-console/userresolve"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "password123"
)

var profileEndpoints = []string{"/user", "/auth/user", "/auth/me", "/users/me", "/profile"}

// fakeBackend stands in for the admin API. Each path maps to a handler; the
// calls slice records every path hit, in order.
type fakeBackend struct {
	lock     sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    []string
	auth     []string
}

func (b *fakeBackend) handle(path string, status int, body any) {
	b.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}
}

func (b *fakeBackend) profileCalls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	n := 0
	for _, c := range b.calls {
		for _, p := range profileEndpoints {
			if c == p {
				n++
			}
		}
	}
	return n
}

// testFixture wires a Service to a fake backend through the real client and resolver.
type testFixture struct {
	backend *fakeBackend
	store   *memstore.Store
	service *session.Service
}

func setupTestFixture(t *testing.T, seed *credentials.Bundle, clientOptions ...apiclient.Option) *testFixture {
	t.Helper()

	backend := &fakeBackend{handlers: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backend.lock.Lock()
		backend.calls = append(backend.calls, r.URL.Path)
		backend.auth = append(backend.auth, r.Header.Get("Authorization"))
		h, ok := backend.handlers[r.URL.Path]
		backend.lock.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	store := memstore.NewWith(seed)
	client, err := apiclient.New(srv.URL, tokenstore.TokenSource(context.Background(), store), clientOptions...)
	require.NoError(t, err)
	resolver, err := userresolve.New(client)
	require.NoError(t, err)

	service, err := session.New(context.Background(), session.Deps{Store: store, API: client, Resolver: resolver})
	require.NoError(t, err)

	return &testFixture{backend: backend, store: store, service: service}
}

func (f *testFixture) stored(t *testing.T) *credentials.Bundle {
	t.Helper()
	b, err := f.store.Get(context.Background())
	require.NoError(t, err)
	return b
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := session.New(context.Background(), session.Deps{})
	require.Error(t, err)
}

func TestBootstrap_WithoutCredentialsIsAnonymous(t *testing.T) {
	f := setupTestFixture(t, nil)
	require.Equal(t, session.StatusBootstrapping, f.service.State().Status())

	require.NoError(t, f.service.Bootstrap(context.Background()))
	require.Equal(t, session.StatusAnonymous, f.service.State().Status())
	require.Zero(t, f.backend.profileCalls())
}

func TestBootstrap_VerifiesStoredCredentials(t *testing.T) {
	f := setupTestFixture(t, &credentials.Bundle{AccessToken: "stored"})
	f.backend.handle("/auth/me", http.StatusOK, map[string]any{"name": "Ada"})

	st := f.service.State()
	require.True(t, st.Loading)
	require.Equal(t, "stored", st.Credentials.AccessToken)

	require.NoError(t, f.service.Bootstrap(context.Background()))
	st = f.service.State()
	require.False(t, st.Loading)
	require.Equal(t, session.StatusProfileKnown, st.Status())
	require.Equal(t, "Ada", st.Profile.DisplayName())
	require.Contains(t, f.backend.auth, "Bearer stored")
}

func TestVerify_UnauthorizedClearsSession(t *testing.T) {
	f := setupTestFixture(t, &credentials.Bundle{AccessToken: "revoked"})
	for _, p := range profileEndpoints {
		f.backend.handle(p, http.StatusUnauthorized, map[string]any{"message": "Unauthenticated."})
	}

	require.NoError(t, f.service.Bootstrap(context.Background()))
	require.Nil(t, f.stored(t))
	st := f.service.State()
	require.Nil(t, st.Profile)
	require.Equal(t, session.StatusAnonymous, st.Status())
}

func TestVerify_AllNotFoundKeepsCredentials(t *testing.T) {
	seed := &credentials.Bundle{AccessToken: "keep-me", APIToken: "api"}
	f := setupTestFixture(t, seed)

	require.NoError(t, f.service.Bootstrap(context.Background()))
	require.Equal(t, seed, f.stored(t))
	require.Equal(t, len(profileEndpoints), f.backend.profileCalls())

	st := f.service.State()
	require.Nil(t, st.Profile)
	require.Equal(t, session.StatusProfileUnknown, st.Status())
}

func TestVerify_ServerErrorKeepsCredentials(t *testing.T) {
	seed := &credentials.Bundle{AccessToken: "keep-me"}
	f := setupTestFixture(t, seed)
	f.backend.handle("/user", http.StatusInternalServerError, map[string]any{"message": "db down"})

	require.NoError(t, f.service.Bootstrap(context.Background()))
	require.Equal(t, seed, f.stored(t))
	require.Equal(t, session.StatusProfileUnknown, f.service.State().Status())
	require.Equal(t, 1, f.backend.profileCalls())
}

func TestVerify_NoCredentialsIsNoop(t *testing.T) {
	f := setupTestFixture(t, nil)
	require.NoError(t, f.service.Verify(context.Background()))
	require.Empty(t, f.backend.calls)
}

func TestLogin_AcceptedShapesStoreToken(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "nested data", body: map[string]any{"data": map[string]any{"access_token": "tok-123"}}},
		{name: "access_token", body: map[string]any{"access_token": "tok-123"}},
		{name: "token", body: map[string]any{"token": "tok-123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, nil)
			f.backend.handle("/auth/admin/login", http.StatusOK, tt.body)
			f.backend.handle("/user", http.StatusOK, map[string]any{"email": testEmail})

			require.NoError(t, f.service.Bootstrap(context.Background()))
			require.NoError(t, f.service.Login(context.Background(), testEmail, testPassword))
			require.Equal(t, "tok-123", f.stored(t).AccessToken)
			require.Equal(t, "tok-123", f.service.State().Credentials.AccessToken)
			require.Equal(t, session.StatusProfileKnown, f.service.State().Status())
		})
	}
}

func TestLogin_EmbeddedUserSkipsProbe(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.backend.handle("/auth/admin/login", http.StatusOK, map[string]any{
		"access_token": "tok",
		"user":         map[string]any{"name": "Grace", "roles": []any{"admin"}},
	})
	f.backend.handle("/user", http.StatusOK, map[string]any{"name": "wrong"})

	require.NoError(t, f.service.Bootstrap(context.Background()))
	require.NoError(t, f.service.Login(context.Background(), testEmail, testPassword))
	st := f.service.State()
	require.Equal(t, session.StatusProfileKnown, st.Status())
	require.Equal(t, users.Profile{"name": "Grace", "roles": []any{"admin"}}, st.Profile)
	require.Zero(t, f.backend.profileCalls())
}

func TestLogin_ProfileFailureDoesNotFailLogin(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.backend.handle("/auth/admin/login", http.StatusOK, map[string]any{"token": "tok"})

	require.NoError(t, f.service.Bootstrap(context.Background()))
	require.NoError(t, f.service.Login(context.Background(), testEmail, testPassword))
	require.Equal(t, "tok", f.stored(t).AccessToken)
	require.Equal(t, session.StatusProfileUnknown, f.service.State().Status())
}

func TestLogin_RejectedClearsStoreWithBackendMessage(t *testing.T) {
	f := setupTestFixture(t, &credentials.Bundle{AccessToken: "old"})
	f.backend.handle("/auth/admin/login", http.StatusUnprocessableEntity, map[string]any{"message": "These credentials do not match our records."})

	err := f.service.Login(context.Background(), testEmail, "wrong")
	require.Error(t, err)
	require.Equal(t, "These credentials do not match our records.", err.Error())

	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "login", authErr.Op)
	require.True(t, apiclient.IsStatus(err, http.StatusUnprocessableEntity))

	require.Nil(t, f.stored(t))
	require.False(t, f.service.State().Authenticated())
}

func TestLogin_TimeoutLeavesStoreEmpty(t *testing.T) {
	f := setupTestFixture(t, nil, apiclient.WithTimeout(50*time.Millisecond))
	f.backend.handlers["/auth/admin/login"] = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}

	err := f.service.Login(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout")
	require.Nil(t, f.stored(t))
	require.False(t, f.service.State().Authenticated())
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.backend.handlers["/register"] = func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "secret", in["password_confirmation"])
		w.Write([]byte(`{"data":{"access_token":"new-tok","api_token":"new-api"}}`))
	}
	f.backend.handle("/profile", http.StatusOK, map[string]any{"email": testEmail})

	require.NoError(t, f.service.Register(context.Background(), testEmail, "secret", "secret"))
	require.Equal(t, &credentials.Bundle{AccessToken: "new-tok", APIToken: "new-api"}, f.stored(t))
	require.Equal(t, testEmail, f.service.State().Profile.Email())
}

func TestRegister_FailureClearsStore(t *testing.T) {
	f := setupTestFixture(t, &credentials.Bundle{AccessToken: "old"})
	f.backend.handle("/register", http.StatusUnprocessableEntity, map[string]any{"errors": map[string]any{"message": "The email has already been taken."}})

	err := f.service.Register(context.Background(), testEmail, "secret", "secret")
	require.EqualError(t, err, "The email has already been taken.")
	require.Nil(t, f.stored(t))
}

func TestPasswordResetPassThrough(t *testing.T) {
	seed := &credentials.Bundle{AccessToken: "untouched"}
	f := setupTestFixture(t, seed)
	f.backend.handle("/forgot-password", http.StatusOK, map[string]any{"message": "We have emailed your password reset link."})
	f.backend.handle("/reset-password", http.StatusBadRequest, map[string]any{"message": "This password reset token is invalid."})

	msg, err := f.service.RequestPasswordResetLink(context.Background(), testEmail)
	require.NoError(t, err)
	require.Equal(t, "We have emailed your password reset link.", msg)

	_, err = f.service.ChangePassword(context.Background(), testEmail, "bad-token", "pw", "pw")
	require.Error(t, err)
	reqErr, ok := apiclient.AsRequestError(err)
	require.True(t, ok)
	require.Equal(t, map[string]any{"message": "This password reset token is invalid."}, reqErr.Payload)

	require.Equal(t, seed, f.stored(t))
	require.Equal(t, seed, f.service.State().Credentials)
}

func TestLogout_AlwaysClears(t *testing.T) {
	seeds := []*credentials.Bundle{nil, {AccessToken: "tok", RefreshToken: "ref"}}
	for _, seed := range seeds {
		f := setupTestFixture(t, seed)
		f.backend.handle("/user", http.StatusOK, map[string]any{"name": "Ada"})
		require.NoError(t, f.service.Bootstrap(context.Background()))

		require.NoError(t, f.service.Logout(context.Background()))
		require.Nil(t, f.stored(t))
		st := f.service.State()
		require.Nil(t, st.Profile)
		require.Equal(t, session.StatusAnonymous, st.Status())
	}
}

func TestFromContext(t *testing.T) {
	_, ok := session.FromContext(context.Background())
	require.False(t, ok)

	f := setupTestFixture(t, nil)
	got, ok := session.FromContext(session.WithService(context.Background(), f.service))
	require.True(t, ok)
	require.Same(t, f.service, got)
}
