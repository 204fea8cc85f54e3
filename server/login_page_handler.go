package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-console/guard"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Notice  string
	Email   string // Preserve email on error
	From    string // Location to return to after login
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse login template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		st := svc.State()
		if !st.Loading && st.Authenticated() {
			http.Redirect(w, r, guard.ReturnPath(r, "/"), http.StatusSeeOther)
			return
		}

		render(w, loginTmpl, http.StatusOK, LoginPageData{
			AppName: s.config.GetAppName(),
			Email:   r.URL.Query().Get("email"),
			Notice:  r.URL.Query().Get("notice"),
			From:    r.URL.Query().Get(guard.FromParam),
		})
	}
}

// LoginSubmissionHandler processes the login form submission (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse login template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Email:   email,
			From:    r.FormValue(guard.FromParam),
		}

		if email == "" || password == "" {
			data.Error = "Email and password are required"
			render(w, loginTmpl, http.StatusBadRequest, data)
			return
		}

		if err := svc.Login(r.Context(), email, password); err != nil {
			data.Error = session.ExtractMessage(err)
			render(w, loginTmpl, http.StatusUnauthorized, data)
			return
		}

		http.Redirect(w, r, guard.ReturnPath(r, "/"), http.StatusSeeOther)
	}
}

// LogoutHandler forgets the session locally (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		if err := svc.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Logout: failed to clear token store")
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}
