package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/jrsteele09/go-admin-console/tokenstore"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Poster is the part of the API client the session issues requests through.
type Poster interface {
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
}

// ProfileResolver fetches the current user's profile.
type ProfileResolver interface {
	Resolve(ctx context.Context) (users.Profile, error)
}

// Deps holds the collaborators a Service needs.
type Deps struct {
	Store    tokenstore.Store // Persisted credential bundle
	API      Poster           // Outbound requests
	Resolver ProfileResolver  // Current-user probe
}

// Paths are the backend routes used by the session operations.
type Paths struct {
	Login          string
	Register       string
	ForgotPassword string
	ResetPassword  string
}

// DefaultPaths matches the admin backend.
var DefaultPaths = Paths{
	Login:          "/auth/admin/login",
	Register:       "/register",
	ForgotPassword: "/forgot-password",
	ResetPassword:  "/reset-password",
}

// Service is the in-memory authority for the console's auth state. It is
// built once at start-up and handed to every consumer.
//
// Operations are not serialized against each other: two overlapping logins
// race and the last state write wins. The mutex only keeps reads and writes of
// the state fields memory-safe.
type Service struct {
	store    tokenstore.Store
	api      Poster
	resolver ProfileResolver
	paths    Paths

	lock    sync.RWMutex
	loading bool
	creds   *credentials.Bundle
	profile users.Profile
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPaths overrides DefaultPaths.
func WithPaths(paths Paths) ServiceOption {
	return func(s *Service) {
		s.paths = paths
	}
}

// New reads the stored bundle and returns a Service in the Bootstrapping
// state. Call Bootstrap to verify the bundle and finish loading.
func New(ctx context.Context, deps Deps, options ...ServiceOption) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("[session.New] Store is required")
	}
	if deps.API == nil {
		return nil, errors.New("[session.New] API is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("[session.New] Resolver is required")
	}

	creds, err := deps.Store.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[session.New] read token store")
	}

	s := &Service{
		store:    deps.Store,
		api:      deps.API,
		resolver: deps.Resolver,
		paths:    DefaultPaths,
		loading:  true,
		creds:    creds,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// State returns a snapshot of the session.
func (s *Service) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return State{
		Loading:     s.loading,
		Credentials: s.creds.Clone(),
		Profile:     s.profile,
	}
}

// Bootstrap verifies a stored bundle, if any. Loading is cleared whatever the outcome.
func (s *Service) Bootstrap(ctx context.Context) error {
	defer func() {
		s.lock.Lock()
		s.loading = false
		s.lock.Unlock()
	}()
	return s.Verify(ctx)
}

// Verify re-resolves the profile for the current bundle. A 401 ends the
// session. Any other failure keeps the bundle and only drops the profile: a
// missing or broken profile route does not mean the credential is invalid.
func (s *Service) Verify(ctx context.Context) error {
	if s.State().Credentials == nil {
		return nil
	}

	profile, err := s.resolver.Resolve(ctx)
	if err == nil {
		s.setProfile(profile)
		return nil
	}
	if apiclient.IsUnauthorized(err) {
		log.Info().Msg("Stored credentials rejected, signing out")
		return s.clearSession(ctx)
	}
	log.Warn().Err(err).Msg("Profile unavailable, keeping credentials")
	s.setProfile(nil)
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and stores the returned bundle. A user object embedded
// in the response is adopted directly; otherwise the profile is resolved, and
// a failed resolution leaves the session authenticated without a profile.
func (s *Service) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Post(ctx, s.paths.Login, loginRequest{Email: email, Password: password})
	if err != nil {
		if clearErr := s.clearSession(ctx); clearErr != nil {
			log.Err(clearErr).Msg("Login: failed to clear token store")
		}
		return &AuthError{Op: "login", Message: ExtractMessage(err), Err: err}
	}

	result := ParseLoginResponse(responsePayload(resp))
	if !result.Bundle.Valid() {
		log.Warn().Str("shape", string(result.Shape)).Msg("Login response carried no access token")
	}
	return s.establish(ctx, result)
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Register creates an account and signs in with the returned bundle.
func (s *Service) Register(ctx context.Context, email, password, confirmation string) error {
	resp, err := s.api.Post(ctx, s.paths.Register, registerRequest{
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		if clearErr := s.clearSession(ctx); clearErr != nil {
			log.Err(clearErr).Msg("Register: failed to clear token store")
		}
		return &AuthError{Op: "register", Message: ExtractMessage(err), Err: err}
	}
	return s.establish(ctx, ParseRegisterResponse(responsePayload(resp)))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// RequestPasswordResetLink asks the backend to mail a reset link. It returns
// the backend's message, if any, and leaves the session untouched.
func (s *Service) RequestPasswordResetLink(ctx context.Context, email string) (string, error) {
	resp, err := s.api.Post(ctx, s.paths.ForgotPassword, forgotPasswordRequest{Email: email})
	if err != nil {
		return "", err
	}
	return responseMessage(resp), nil
}

type resetPasswordRequest struct {
	Email                string `json:"email"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ChangePassword completes a reset with the emailed token. The session is untouched.
func (s *Service) ChangePassword(ctx context.Context, email, token, password, confirmation string) (string, error) {
	resp, err := s.api.Post(ctx, s.paths.ResetPassword, resetPasswordRequest{
		Email:                email,
		Token:                token,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		return "", err
	}
	return responseMessage(resp), nil
}

// Logout forgets the bundle and profile. The backend is not contacted.
func (s *Service) Logout(ctx context.Context) error {
	return s.clearSession(ctx)
}

func (s *Service) establish(ctx context.Context, result LoginResult) error {
	if err := s.store.Set(ctx, result.Bundle); err != nil {
		return errors.Wrap(err, "[Service.establish] store credentials")
	}
	s.lock.Lock()
	s.creds = result.Bundle.Clone()
	s.profile = nil
	s.lock.Unlock()

	if result.Profile != nil {
		s.setProfile(result.Profile)
		return nil
	}

	profile, err := s.resolver.Resolve(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Signed in but the profile could not be resolved")
		return nil
	}
	s.setProfile(profile)
	return nil
}

func (s *Service) setProfile(profile users.Profile) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.profile = profile
}

// clearSession drops the in-memory state even when the store fails.
func (s *Service) clearSession(ctx context.Context) error {
	s.lock.Lock()
	s.creds = nil
	s.profile = nil
	s.lock.Unlock()

	return errors.Wrap(s.store.Clear(ctx), "[Service.clearSession] clear token store")
}

// responsePayload decodes the body as JSON, falling back to the raw text.
func responsePayload(resp *apiclient.Response) any {
	payload, err := resp.JSON()
	if err != nil {
		return string(resp.Body)
	}
	return payload
}

func responseMessage(resp *apiclient.Response) string {
	return utils.FirstString(utils.AsMap(responsePayload(resp)), "message", "status")
}
