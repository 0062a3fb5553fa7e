package strut

import "sync"

// RouteInfo records one bound route for introspection.
type RouteInfo struct {
	// Method is the HTTP verb (GET, POST, ...)
	Method string

	// Path is the full strut pattern, base path included
	Path Pattern

	// Controller is the name of the owning controller type
	Controller string

	// Handler is the endpoint method name
	Handler string

	// MiddlewareCount is the number of middlewares on the route, controller
	// and endpoint level combined
	MiddlewareCount int
}

// RouteTable collects RouteInfo entries as the binder registers routes.
type RouteTable struct {
	mu     sync.RWMutex
	routes []RouteInfo
}

// NewRouteTable creates an empty route table.
func NewRouteTable() *RouteTable {
	return &RouteTable{}
}

// Add records a bound route.
func (t *RouteTable) Add(route RouteInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, route)
}

// All returns a copy of every recorded route.
func (t *RouteTable) All() []RouteInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]RouteInfo(nil), t.routes...)
}

// ByController returns routes belonging to the named controller type.
func (t *RouteTable) ByController(controller string) []RouteInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var filtered []RouteInfo
	for _, route := range t.routes {
		if route.Controller == controller {
			filtered = append(filtered, route)
		}
	}
	return filtered
}

// ByMethod returns routes registered for the given HTTP verb.
func (t *RouteTable) ByMethod(method string) []RouteInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var filtered []RouteInfo
	for _, route := range t.routes {
		if route.Method == method {
			filtered = append(filtered, route)
		}
	}
	return filtered
}
