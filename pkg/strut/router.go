package strut

import (
	"context"
	"net/url"
	"time"
)

// Router defines the contract between the route binder and the underlying
// HTTP engine. Adapters for concrete engines live in the adapters package.
type Router interface {
	// Route registration
	Register(method string, path Pattern, handler HandlerFunc, middlewares ...MiddlewareFunc)
	Mount(prefix string) RouteGroup

	// Global middleware
	Use(middleware MiddlewareFunc)

	// Terminal handlers, installed after all routes are bound
	NotFound(handler HandlerFunc)
	OnError(fn ErrorHandlerFunc)

	// Server lifecycle
	Start(addr string) error
	Stop(ctx context.Context) error

	// Engine information
	Name() string
}

// RouteGroup represents a group of routes sharing a common prefix.
type RouteGroup interface {
	Register(method string, path Pattern, handler HandlerFunc, middlewares ...MiddlewareFunc)
	Use(middleware MiddlewareFunc)
	Group(prefix Pattern) RouteGroup
}

// Context provides an engine-agnostic view of one in-flight request. A fresh
// Context is created per dispatch and must not be retained after the handler
// returns.
type Context interface {
	// Request data
	Method() string
	Path() string

	// Route parameters
	Param(name string) string

	// Query parameters
	QueryParam(name string) string
	QueryParams() url.Values

	// Headers
	Header(key string) string
	SetHeader(key, value string)

	// Body handling
	Bind(target any) error

	// Response writing
	JSON(code int, body any) error
	String(code int, s string) error
	Blob(code int, contentType string, b []byte) error
	NoContent(code int) error
	SetCookie(cookie Cookie)
	Written() bool

	// Per-request data shared along the middleware chain
	Get(key string) any
	Set(key string, val any)
}

// HandlerFunc defines the signature for HTTP handlers.
type HandlerFunc func(Context) error

// MiddlewareFunc defines the signature for middleware.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// ErrorHandlerFunc receives every failure a handler returns and must produce
// exactly one terminal response for it.
type ErrorHandlerFunc func(Context, error)

// Chain wraps handler with the given middlewares. The first middleware runs
// outermost.
func Chain(handler HandlerFunc, middlewares ...MiddlewareFunc) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// Cookie represents an HTTP cookie in an engine-agnostic form.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite SameSiteMode
}

// SameSiteMode defines cookie SameSite attribute modes.
type SameSiteMode int

const (
	SameSiteDefaultMode SameSiteMode = iota
	SameSiteLaxMode
	SameSiteStrictMode
	SameSiteNoneMode
)

// HTTPVerbs lists the verbs an endpoint declaration may use. Anything else is
// a startup configuration error.
var HTTPVerbs = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"OPTIONS": true,
	"HEAD":    true,
}
