package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// NewAPIProxy forwards console-relative API calls to the backend during development.
func NewAPIProxy(backendURL string) (http.Handler, error) {
	target, err := url.Parse(backendURL)
	if err != nil || !target.IsAbs() {
		return nil, errors.Errorf("[NewAPIProxy] invalid backend URL %q", backendURL)
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Err(err).Str("path", r.URL.Path).Msg("API proxy error")
		http.Error(w, `{"message":"Backend unavailable"}`, http.StatusBadGateway)
	}
	return proxy, nil
}
