package server

const (
	RouteDashboard      = "/{$}"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteHealth         = "/healthz"
	RouteMetrics        = "/metrics"
	RouteAPIProxy       = "/api/"
)
