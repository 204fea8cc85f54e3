package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-admin-console/session"
	"github.com/rs/zerolog/log"
)

// PasswordPageData is the template model for the forgot/reset password pages
type PasswordPageData struct {
	AppName string
	Error   string
	Notice  string
	Email   string
	Token   string
}

// ForgotPasswordGetHandler renders the forgot-password page
func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("forgot_password.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse forgot password template")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, http.StatusOK, PasswordPageData{
			AppName: s.config.GetAppName(),
			Email:   r.URL.Query().Get("email"),
		})
	}
}

// ForgotPasswordPostHandler asks the backend to email a reset link
func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("forgot_password.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse forgot password template")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		data := PasswordPageData{AppName: s.config.GetAppName(), Email: r.FormValue("email")}
		if data.Email == "" {
			data.Error = "Email is required"
			render(w, tmpl, http.StatusBadRequest, data)
			return
		}

		msg, err := svc.RequestPasswordResetLink(r.Context(), data.Email)
		if err != nil {
			data.Error = session.ExtractMessage(err)
			render(w, tmpl, http.StatusBadGateway, data)
			return
		}
		if msg == "" {
			msg = "If the address is registered, a reset link is on its way."
		}
		data.Notice = msg
		render(w, tmpl, http.StatusOK, data)
	}
}

// ResetPasswordGetHandler renders the reset form for the emailed token
func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("reset_password.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse reset password template")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, http.StatusOK, PasswordPageData{
			AppName: s.config.GetAppName(),
			Email:   r.URL.Query().Get("email"),
			Token:   r.URL.Query().Get("token"),
		})
	}
}

// ResetPasswordPostHandler sets the new password and sends the user to login
func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("reset_password.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse reset password template")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		data := PasswordPageData{
			AppName: s.config.GetAppName(),
			Email:   r.FormValue("email"),
			Token:   r.FormValue("token"),
		}
		password := r.FormValue("password")
		confirmation := r.FormValue("password_confirmation")
		if data.Email == "" || data.Token == "" || password == "" {
			data.Error = "Email, token and password are required"
			render(w, tmpl, http.StatusBadRequest, data)
			return
		}

		msg, err := svc.ChangePassword(r.Context(), data.Email, data.Token, password, confirmation)
		if err != nil {
			data.Error = session.ExtractMessage(err)
			render(w, tmpl, http.StatusBadRequest, data)
			return
		}
		if msg == "" {
			msg = "Your password has been reset."
		}
		q := url.Values{"email": {data.Email}, "notice": {msg}}
		http.Redirect(w, r, RouteLogin+"?"+q.Encode(), http.StatusSeeOther)
	}
}
