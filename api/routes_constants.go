package api

// Endpoint path constants, relative to the configured base URL.
// All backend routes are defined here to ensure consistency and prevent typos.
const (
	// Auth Routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthSignup  = "/auth/signup"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"

	// Trading Routes
	RouteHoldings   = "/holdings"
	RouteOrderbook  = "/orderbook"
	RoutePositions  = "/positions"
	RoutePlaceOrder = "/orders"

	// Health
	RouteHealth = "/health"
)
