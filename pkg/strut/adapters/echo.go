// Package adapters provides strut.Router implementations for concrete HTTP
// engines: Echo, Gin and Fiber.
package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/strutweb/strut/pkg/strut"
)

// EchoAdapter implements strut.Router for Echo v4.
type EchoAdapter struct {
	engine   *echo.Echo
	onError  strut.ErrorHandlerFunc
	notFound strut.HandlerFunc
}

// NewEchoAdapter creates an Echo adapter around an existing Echo instance.
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	ea := &EchoAdapter{engine: e}
	e.HTTPErrorHandler = ea.handleEngineError
	return ea
}

// NewDefaultEchoAdapter creates an Echo adapter with a fresh Echo instance.
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	return NewEchoAdapter(e)
}

// patternToEcho converts a strut pattern to Echo route syntax.
func patternToEcho(path strut.Pattern) string {
	parts, err := path.Parts()
	if err != nil {
		// The binder validates patterns before registration; pass malformed
		// input through so Echo reports it.
		return path.Raw()
	}
	echoPath := ""
	for _, part := range parts {
		switch part.Kind {
		case strut.StaticPart:
			echoPath += part.Value
		case strut.ParamPart:
			echoPath += ":" + part.Value
		case strut.WildcardPart:
			echoPath += "*"
		}
	}
	return echoPath
}

// Register registers a route with the Echo engine.
func (ea *EchoAdapter) Register(method string, path strut.Pattern, handler strut.HandlerFunc, middlewares ...strut.MiddlewareFunc) {
	ea.engine.Add(method, patternToEcho(path), ea.convertHandler(strut.Chain(handler, middlewares...)))
}

// Mount creates a route group under the given prefix.
func (ea *EchoAdapter) Mount(prefix string) strut.RouteGroup {
	return &EchoGroup{group: ea.engine.Group(prefix), adapter: ea}
}

// Use adds global middleware.
func (ea *EchoAdapter) Use(middleware strut.MiddlewareFunc) {
	ea.engine.Use(ea.convertMiddleware(middleware))
}

// NotFound installs the terminal handler for unmatched requests.
func (ea *EchoAdapter) NotFound(handler strut.HandlerFunc) {
	ea.notFound = handler
}

// OnError installs the terminal error hook. Every failure a handler returns
// is routed here.
func (ea *EchoAdapter) OnError(fn strut.ErrorHandlerFunc) {
	ea.onError = fn
}

// Start starts the server.
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server gracefully.
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name.
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// Engine returns the underlying Echo instance.
func (ea *EchoAdapter) Engine() *echo.Echo {
	return ea.engine
}

// handleEngineError receives errors Echo raises outside our handlers,
// chiefly unmatched routes, and feeds them through the strut error path.
func (ea *EchoAdapter) handleEngineError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	ctx := &EchoContext{context: c}

	if he, ok := err.(*echo.HTTPError); ok {
		if he.Code == http.StatusNotFound && ea.notFound != nil {
			if nferr := ea.notFound(ctx); nferr != nil {
				ea.dispatchError(ctx, nferr)
			}
			return
		}
		err = strut.NewHttpError(he.Code, fmt.Sprintf("%v", he.Message))
	}
	ea.dispatchError(ctx, err)
}

func (ea *EchoAdapter) dispatchError(ctx *EchoContext, err error) {
	if ea.onError != nil {
		ea.onError(ctx, err)
		return
	}
	// No translator installed; fall back to a bare JSON response.
	if herr, ok := err.(*strut.HttpError); ok {
		_ = ctx.JSON(herr.StatusCode, herr)
		return
	}
	_ = ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// EchoGroup implements strut.RouteGroup for Echo groups.
type EchoGroup struct {
	group   *echo.Group
	adapter *EchoAdapter
}

// Register registers a route with the group.
func (eg *EchoGroup) Register(method string, path strut.Pattern, handler strut.HandlerFunc, middlewares ...strut.MiddlewareFunc) {
	eg.group.Add(method, patternToEcho(path), eg.adapter.convertHandler(strut.Chain(handler, middlewares...)))
}

// Use adds middleware to the group.
func (eg *EchoGroup) Use(middleware strut.MiddlewareFunc) {
	eg.group.Use(eg.adapter.convertMiddleware(middleware))
}

// Group creates a sub-group.
func (eg *EchoGroup) Group(prefix strut.Pattern) strut.RouteGroup {
	return &EchoGroup{group: eg.group.Group(patternToEcho(prefix)), adapter: eg.adapter}
}

// convertHandler converts strut.HandlerFunc to echo.HandlerFunc. Failures go
// to the installed error hook, never back into Echo.
func (ea *EchoAdapter) convertHandler(handler strut.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := &EchoContext{context: c}
		if err := handler(ctx); err != nil {
			ea.dispatchError(ctx, err)
		}
		return nil
	}
}

// convertMiddleware converts strut.MiddlewareFunc to echo.MiddlewareFunc.
func (ea *EchoAdapter) convertMiddleware(middleware strut.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			strutNext := func(ctx strut.Context) error {
				return next(c)
			}
			ctx := &EchoContext{context: c}
			if err := middleware(strutNext)(ctx); err != nil {
				ea.dispatchError(ctx, err)
			}
			return nil
		}
	}
}

// EchoContext implements strut.Context for Echo.
type EchoContext struct {
	context echo.Context
}

// Method returns the HTTP method.
func (ec *EchoContext) Method() string {
	return ec.context.Request().Method
}

// Path returns the request path.
func (ec *EchoContext) Path() string {
	return ec.context.Request().URL.Path
}

// Param returns a route parameter by name.
func (ec *EchoContext) Param(name string) string {
	return ec.context.Param(name)
}

// QueryParam returns a query parameter by name.
func (ec *EchoContext) QueryParam(name string) string {
	return ec.context.QueryParam(name)
}

// QueryParams returns all query parameters.
func (ec *EchoContext) QueryParams() url.Values {
	return ec.context.QueryParams()
}

// Header returns a request header value.
func (ec *EchoContext) Header(key string) string {
	return ec.context.Request().Header.Get(key)
}

// SetHeader sets a response header.
func (ec *EchoContext) SetHeader(key, value string) {
	ec.context.Response().Header().Set(key, value)
}

// Bind decodes the request body into target.
func (ec *EchoContext) Bind(target any) error {
	return ec.context.Bind(target)
}

// JSON writes a JSON response.
func (ec *EchoContext) JSON(code int, body any) error {
	return ec.context.JSON(code, body)
}

// String writes a plain text response.
func (ec *EchoContext) String(code int, s string) error {
	return ec.context.String(code, s)
}

// Blob writes a raw response with the given content type.
func (ec *EchoContext) Blob(code int, contentType string, b []byte) error {
	return ec.context.Blob(code, contentType, b)
}

// NoContent writes a bodyless response.
func (ec *EchoContext) NoContent(code int) error {
	return ec.context.NoContent(code)
}

// SetCookie attaches a cookie to the response.
func (ec *EchoContext) SetCookie(cookie strut.Cookie) {
	ec.context.SetCookie(&http.Cookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Path:     cookie.Path,
		Domain:   cookie.Domain,
		Expires:  cookie.Expires,
		MaxAge:   cookie.MaxAge,
		Secure:   cookie.Secure,
		HttpOnly: cookie.HttpOnly,
		SameSite: httpSameSite(cookie.SameSite),
	})
}

func httpSameSite(mode strut.SameSiteMode) http.SameSite {
	switch mode {
	case strut.SameSiteLaxMode:
		return http.SameSiteLaxMode
	case strut.SameSiteStrictMode:
		return http.SameSiteStrictMode
	case strut.SameSiteNoneMode:
		return http.SameSiteNoneMode
	}
	return http.SameSiteDefaultMode
}

// Written reports whether a response has been committed.
func (ec *EchoContext) Written() bool {
	return ec.context.Response().Committed
}

// Get retrieves per-request data.
func (ec *EchoContext) Get(key string) any {
	return ec.context.Get(key)
}

// Set stores per-request data.
func (ec *EchoContext) Set(key string, val any) {
	ec.context.Set(key, val)
}
