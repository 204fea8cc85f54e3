package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/format"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/rs/zerolog/log"
)

// DashboardPageData is the template model for the signed-in landing page
type DashboardPageData struct {
	AppName      string
	Status       session.Status
	ProfileKnown bool
	DisplayName  string
	Email        string
	Roles        []string
	AvatarURL    string
	TokenSubject string
	TokenExpiry  string
}

// DashboardHandler shows who is signed in. It sits behind guard.RequireSession.
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("dashboard.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse dashboard template")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "Session unavailable", http.StatusInternalServerError)
			return
		}
		render(w, tmpl, http.StatusOK, s.dashboardData(svc.State()))
	}
}

func (s *Server) dashboardData(st session.State) DashboardPageData {
	data := DashboardPageData{
		AppName:      s.config.GetAppName(),
		Status:       st.Status(),
		ProfileKnown: st.Profile != nil,
		TokenExpiry:  "-",
	}
	if st.Profile != nil {
		data.DisplayName = st.Profile.DisplayName()
		data.Email = st.Profile.Email()
		data.Roles = st.Profile.Roles()
		data.AvatarURL = format.ImageURL(s.apiBase, st.Profile.Avatar())
	}
	if claims, err := credentials.Inspect(st.Credentials); err == nil {
		data.TokenSubject = claims.Subject
		data.TokenExpiry = format.DateTime(claims.ExpiresAt)
	}
	return data
}

type healthResponse struct {
	Status  string         `json:"status"`
	Session session.Status `json:"session"`
}

// HealthHandler reports liveness and the current session status
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthResponse{Status: "ok", Session: s.session.State().Status()})
	}
}
