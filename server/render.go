package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

// render executes into a buffer first so a template error never sends a
// half-written page with a success status.
func render(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	if tmpl == nil {
		http.Error(w, "Template unavailable", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Err(err).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	buf.WriteTo(w)
}
