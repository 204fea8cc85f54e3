package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-admin-console/session"
)

// FromParam carries the originally requested location through the login page.
const FromParam = "from"

// Outcome is what the guard does with a request for a protected view.
type Outcome int

const (
	// Placeholder: the session is still bootstrapping.
	Placeholder Outcome = iota + 1
	// Allow: a credential bundle is present.
	Allow
	// Redirect: anonymous, send to the login page.
	Redirect
)

// Decision is the guard's verdict for one request.
type Decision struct {
	Outcome  Outcome
	Location string // Redirect target, including the preserved location
	From     string // Originally requested location
}

// Decide is a pure function of the session state.
func Decide(st session.State, requested, loginPath string) Decision {
	switch {
	case st.Loading:
		return Decision{Outcome: Placeholder}
	case st.Authenticated():
		return Decision{Outcome: Allow}
	}
	location := loginPath
	if requested != "" {
		location += "?" + url.Values{FromParam: {requested}}.Encode()
	}
	return Decision{Outcome: Redirect, Location: location, From: requested}
}

// StateReader is satisfied by *session.Service.
type StateReader interface {
	State() session.State
}

const placeholderHTML = `<!doctype html><html><head><meta http-equiv="refresh" content="1"><title>Loading</title></head><body><p>Loading&hellip;</p></body></html>`

// RequireSession gates a handler on the session, in the same shape as the
// other console middleware.
func RequireSession(reader StateReader, loginPath string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision := Decide(reader.State(), r.URL.RequestURI(), loginPath)
			switch decision.Outcome {
			case Placeholder:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(placeholderHTML))
			case Allow:
				next(w, r)
			default:
				http.Redirect(w, r, decision.Location, http.StatusSeeOther)
			}
		}
	}
}

// ReturnPath reads the preserved location from r, accepting only local paths.
// fallback is returned when nothing usable was preserved.
func ReturnPath(r *http.Request, fallback string) string {
	from := r.FormValue(FromParam)
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return fallback
	}
	return from
}
