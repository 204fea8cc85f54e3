package server

import (
	"log"
	"strings"
)

const (
	green      = "\033[32m"
	blue       = "\033[34m"
	cyan       = "\033[36m"
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":  green,
	"POST": blue,
}

// logRoutes prints the registered patterns at start-up in DEV.
func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "*", route
		}
		logRoute(method, path)
	}
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	if method == "*" {
		color = cyan
	}
	log.Printf("[%s %-7s%s] %s\n", color, method, resetColor, path)
}
