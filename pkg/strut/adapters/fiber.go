package adapters

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/strutweb/strut/pkg/strut"
)

// FiberAdapter implements strut.Router for Fiber v2.
type FiberAdapter struct {
	app      *fiber.App
	onError  strut.ErrorHandlerFunc
	notFound strut.HandlerFunc
}

// NewFiberAdapter creates a Fiber adapter with a fresh Fiber app.
func NewFiberAdapter() *FiberAdapter {
	return &FiberAdapter{app: fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})}
}

// NewFiberAppAdapter creates a Fiber adapter around an existing app.
func NewFiberAppAdapter(app *fiber.App) *FiberAdapter {
	return &FiberAdapter{app: app}
}

// patternToFiber converts a strut pattern to Fiber route syntax.
func patternToFiber(path strut.Pattern) string {
	parts, err := path.Parts()
	if err != nil {
		return path.Raw()
	}
	fiberPath := ""
	for _, part := range parts {
		switch part.Kind {
		case strut.StaticPart:
			fiberPath += part.Value
		case strut.ParamPart:
			fiberPath += ":" + part.Value
		case strut.WildcardPart:
			fiberPath += "*"
		}
	}
	return fiberPath
}

// Register registers a route with the Fiber app.
func (fa *FiberAdapter) Register(method string, path strut.Pattern, handler strut.HandlerFunc, middlewares ...strut.MiddlewareFunc) {
	fa.add(fa.app, method, patternToFiber(path), strut.Chain(handler, middlewares...))
}

// Mount creates a route group under the given prefix.
func (fa *FiberAdapter) Mount(prefix string) strut.RouteGroup {
	return &FiberGroup{group: fa.app.Group(prefix), adapter: fa}
}

// Use adds global middleware.
func (fa *FiberAdapter) Use(middleware strut.MiddlewareFunc) {
	fa.app.Use(fa.convertMiddleware(middleware))
}

// NotFound installs the terminal handler for unmatched requests. It is
// appended as a catch-all after all routes, so it must be installed last.
func (fa *FiberAdapter) NotFound(handler strut.HandlerFunc) {
	fa.notFound = handler
	fa.app.Use(fa.convertHandler(handler))
}

// OnError installs the terminal error hook.
func (fa *FiberAdapter) OnError(fn strut.ErrorHandlerFunc) {
	fa.onError = fn
}

// Start starts the server.
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the server gracefully.
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name.
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// App returns the underlying Fiber app.
func (fa *FiberAdapter) App() *fiber.App {
	return fa.app
}

func (fa *FiberAdapter) add(router fiber.Router, method, path string, handler strut.HandlerFunc) {
	fiberHandler := fa.convertHandler(handler)
	switch strings.ToUpper(method) {
	case "GET":
		router.Get(path, fiberHandler)
	case "POST":
		router.Post(path, fiberHandler)
	case "PUT":
		router.Put(path, fiberHandler)
	case "DELETE":
		router.Delete(path, fiberHandler)
	case "PATCH":
		router.Patch(path, fiberHandler)
	case "OPTIONS":
		router.Options(path, fiberHandler)
	case "HEAD":
		router.Head(path, fiberHandler)
	}
}

// FiberGroup implements strut.RouteGroup for Fiber groups.
type FiberGroup struct {
	group   fiber.Router
	adapter *FiberAdapter
}

// Register registers a route with this group.
func (fg *FiberGroup) Register(method string, path strut.Pattern, handler strut.HandlerFunc, middlewares ...strut.MiddlewareFunc) {
	fg.adapter.add(fg.group, method, patternToFiber(path), strut.Chain(handler, middlewares...))
}

// Use adds middleware to this group.
func (fg *FiberGroup) Use(middleware strut.MiddlewareFunc) {
	fg.group.Use(fg.adapter.convertMiddleware(middleware))
}

// Group creates a sub-group.
func (fg *FiberGroup) Group(prefix strut.Pattern) strut.RouteGroup {
	return &FiberGroup{group: fg.group.Group(patternToFiber(prefix)), adapter: fg.adapter}
}

// convertHandler converts a strut handler to a Fiber handler.
func (fa *FiberAdapter) convertHandler(handler strut.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := &FiberContext{ctx: c}
		if err := handler(ctx); err != nil {
			fa.dispatchError(ctx, err)
		}
		return nil
	}
}

// convertMiddleware converts a strut middleware to a Fiber handler.
func (fa *FiberAdapter) convertMiddleware(middleware strut.MiddlewareFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := &FiberContext{ctx: c}
		next := func(strut.Context) error {
			return c.Next()
		}
		if err := middleware(next)(ctx); err != nil {
			fa.dispatchError(ctx, err)
		}
		return nil
	}
}

func (fa *FiberAdapter) dispatchError(ctx *FiberContext, err error) {
	if fa.onError != nil {
		fa.onError(ctx, err)
		return
	}
	if herr, ok := err.(*strut.HttpError); ok {
		_ = ctx.JSON(herr.StatusCode, herr)
		return
	}
	_ = ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// FiberContext implements strut.Context for Fiber.
type FiberContext struct {
	ctx     *fiber.Ctx
	written bool
}

// Method returns the HTTP method.
func (fc *FiberContext) Method() string {
	return fc.ctx.Method()
}

// Path returns the request path.
func (fc *FiberContext) Path() string {
	return fc.ctx.Path()
}

// Param returns a route parameter by name.
func (fc *FiberContext) Param(name string) string {
	return fc.ctx.Params(name)
}

// QueryParam returns a query parameter by name.
func (fc *FiberContext) QueryParam(name string) string {
	return fc.ctx.Query(name)
}

// QueryParams returns all query parameters.
func (fc *FiberContext) QueryParams() url.Values {
	values := make(url.Values)
	fc.ctx.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}

// Header returns a request header value.
func (fc *FiberContext) Header(key string) string {
	return fc.ctx.Get(key)
}

// SetHeader sets a response header.
func (fc *FiberContext) SetHeader(key, value string) {
	fc.ctx.Set(key, value)
}

// Bind decodes the request body into target.
func (fc *FiberContext) Bind(target any) error {
	return fc.ctx.BodyParser(target)
}

// JSON writes a JSON response.
func (fc *FiberContext) JSON(code int, body any) error {
	fc.written = true
	return fc.ctx.Status(code).JSON(body)
}

// String writes a plain text response.
func (fc *FiberContext) String(code int, s string) error {
	fc.written = true
	return fc.ctx.Status(code).SendString(s)
}

// Blob writes a raw response with the given content type.
func (fc *FiberContext) Blob(code int, contentType string, b []byte) error {
	fc.written = true
	fc.ctx.Set(fiber.HeaderContentType, contentType)
	return fc.ctx.Status(code).Send(b)
}

// NoContent writes a bodyless response.
func (fc *FiberContext) NoContent(code int) error {
	fc.written = true
	fc.ctx.Status(code)
	return nil
}

// SetCookie attaches a cookie to the response.
func (fc *FiberContext) SetCookie(cookie strut.Cookie) {
	fc.ctx.Cookie(&fiber.Cookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Path:     cookie.Path,
		Domain:   cookie.Domain,
		Expires:  cookie.Expires,
		MaxAge:   cookie.MaxAge,
		Secure:   cookie.Secure,
		HTTPOnly: cookie.HttpOnly,
		SameSite: fiberSameSite(cookie.SameSite),
	})
}

func fiberSameSite(mode strut.SameSiteMode) string {
	switch mode {
	case strut.SameSiteLaxMode:
		return fiber.CookieSameSiteLaxMode
	case strut.SameSiteStrictMode:
		return fiber.CookieSameSiteStrictMode
	case strut.SameSiteNoneMode:
		return fiber.CookieSameSiteNoneMode
	}
	return ""
}

// Written reports whether a response has been written through this context.
func (fc *FiberContext) Written() bool {
	return fc.written || len(fc.ctx.Response().Body()) > 0
}

// Get retrieves per-request data.
func (fc *FiberContext) Get(key string) any {
	return fc.ctx.Locals(key)
}

// Set stores per-request data.
func (fc *FiberContext) Set(key string, val any) {
	fc.ctx.Locals(key, val)
}
