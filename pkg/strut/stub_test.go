package strut

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
)

// stubRouter records registrations so binder and app behavior can be
// asserted without a real engine.
type stubRouter struct {
	routes   []stubRoute
	events   []string
	notFound HandlerFunc
	onError  ErrorHandlerFunc
	started  string
	stopped  bool
}

type stubRoute struct {
	method  string
	path    Pattern
	handler HandlerFunc
	mwCount int
}

func (r *stubRouter) Register(method string, path Pattern, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	r.events = append(r.events, "route")
	r.routes = append(r.routes, stubRoute{method, path, Chain(handler, middlewares...), len(middlewares)})
}

func (r *stubRouter) Mount(prefix string) RouteGroup {
	return &stubGroup{router: r, prefix: Pattern(prefix)}
}

func (r *stubRouter) Use(middleware MiddlewareFunc) {
	r.events = append(r.events, "use")
}

func (r *stubRouter) NotFound(handler HandlerFunc) {
	r.events = append(r.events, "notfound")
	r.notFound = handler
}

func (r *stubRouter) OnError(fn ErrorHandlerFunc) {
	r.events = append(r.events, "onerror")
	r.onError = fn
}

func (r *stubRouter) Start(addr string) error        { r.started = addr; return nil }
func (r *stubRouter) Stop(ctx context.Context) error { r.stopped = true; return nil }
func (r *stubRouter) Name() string                   { return "stub" }

func (r *stubRouter) route(method string, path Pattern) *stubRoute {
	for i := range r.routes {
		if r.routes[i].method == method && r.routes[i].path == path {
			return &r.routes[i]
		}
	}
	return nil
}

type stubGroup struct {
	router *stubRouter
	prefix Pattern
}

func (g *stubGroup) Register(method string, path Pattern, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	g.router.events = append(g.router.events, "route")
	g.router.routes = append(g.router.routes, stubRoute{method, g.prefix.Join(path), Chain(handler, middlewares...), len(middlewares)})
}

func (g *stubGroup) Use(middleware MiddlewareFunc) {
	g.router.events = append(g.router.events, "use")
}

func (g *stubGroup) Group(prefix Pattern) RouteGroup {
	return &stubGroup{router: g.router, prefix: g.prefix.Join(prefix)}
}

// stubContext is an in-memory Context capturing whatever the code under test
// writes to it.
type stubContext struct {
	method     string
	path       string
	params     map[string]string
	query      url.Values
	reqHeaders map[string]string
	body       []byte

	status      int
	jsonBody    any
	textBody    string
	blobBody    []byte
	contentType string
	headers     map[string]string
	cookies     []Cookie
	written     bool
	values      map[string]any
}

func newStubContext() *stubContext {
	return &stubContext{
		method:     "GET",
		path:       "/",
		params:     map[string]string{},
		query:      url.Values{},
		reqHeaders: map[string]string{},
		headers:    map[string]string{},
		values:     map[string]any{},
	}
}

func (c *stubContext) Method() string                { return c.method }
func (c *stubContext) Path() string                  { return c.path }
func (c *stubContext) Param(name string) string      { return c.params[name] }
func (c *stubContext) QueryParam(name string) string { return c.query.Get(name) }
func (c *stubContext) QueryParams() url.Values       { return c.query }
func (c *stubContext) Header(key string) string      { return c.reqHeaders[key] }
func (c *stubContext) SetHeader(key, value string)   { c.headers[key] = value }

func (c *stubContext) Bind(target any) error {
	if len(c.body) == 0 {
		return nil
	}
	return json.Unmarshal(c.body, target)
}

func (c *stubContext) JSON(code int, body any) error {
	c.status, c.jsonBody, c.written = code, body, true
	return nil
}

func (c *stubContext) String(code int, s string) error {
	c.status, c.textBody, c.written = code, s, true
	return nil
}

func (c *stubContext) Blob(code int, contentType string, b []byte) error {
	c.status, c.contentType, c.blobBody, c.written = code, contentType, b, true
	return nil
}

func (c *stubContext) NoContent(code int) error {
	c.status, c.written = code, true
	return nil
}

func (c *stubContext) SetCookie(cookie Cookie) { c.cookies = append(c.cookies, cookie) }
func (c *stubContext) Written() bool           { return c.written }
func (c *stubContext) Get(key string) any      { return c.values[key] }
func (c *stubContext) Set(key string, val any) { c.values[key] = val }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
