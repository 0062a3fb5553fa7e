package adapters

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/strutweb/strut/pkg/strut"
)

// GinAdapter implements strut.Router for the Gin framework.
type GinAdapter struct {
	engine   *gin.Engine
	server   *http.Server
	onError  strut.ErrorHandlerFunc
	notFound strut.HandlerFunc
}

// NewGinAdapter creates a Gin adapter around an existing engine.
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a Gin adapter with a default engine.
func NewDefaultGinAdapter() *GinAdapter {
	return &GinAdapter{engine: gin.Default()}
}

// patternToGin converts a strut pattern to Gin route syntax. Gin requires
// named wildcards, so anonymous ones become *path.
func patternToGin(path strut.Pattern) string {
	parts, err := path.Parts()
	if err != nil {
		return path.Raw()
	}
	ginPath := ""
	for _, part := range parts {
		switch part.Kind {
		case strut.StaticPart:
			ginPath += part.Value
		case strut.ParamPart:
			ginPath += ":" + part.Value
		case strut.WildcardPart:
			name := part.Value
			if name == "*" {
				name = "path"
			}
			ginPath += "*" + name
		}
	}
	return ginPath
}

// Register registers a route with the Gin engine.
func (ga *GinAdapter) Register(method string, path strut.Pattern, handler strut.HandlerFunc, middlewares ...strut.MiddlewareFunc) {
	ga.engine.Handle(method, patternToGin(path), ga.convertHandler(strut.Chain(handler, middlewares...)))
}

// Mount creates a route group under the given prefix.
func (ga *GinAdapter) Mount(prefix string) strut.RouteGroup {
	return &GinGroup{group: ga.engine.Group(prefix), adapter: ga}
}

// Use adds global middleware.
func (ga *GinAdapter) Use(middleware strut.MiddlewareFunc) {
	ga.engine.Use(ga.convertMiddleware(middleware))
}

// NotFound installs the terminal handler for unmatched requests.
func (ga *GinAdapter) NotFound(handler strut.HandlerFunc) {
	ga.notFound = handler
	ga.engine.NoRoute(ga.convertHandler(handler))
}

// OnError installs the terminal error hook.
func (ga *GinAdapter) OnError(fn strut.ErrorHandlerFunc) {
	ga.onError = fn
}

// Start starts the server. Gin has no graceful shutdown of its own, so the
// engine is wrapped in an http.Server.
func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	return ga.server.ListenAndServe()
}

// Stop stops the server gracefully.
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name.
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// Engine returns the underlying Gin engine.
func (ga *GinAdapter) Engine() *gin.Engine {
	return ga.engine
}

// GinGroup implements strut.RouteGroup for Gin.
type GinGroup struct {
	group   *gin.RouterGroup
	adapter *GinAdapter
}

// Register registers a route within the group.
func (gg *GinGroup) Register(method string, path strut.Pattern, handler strut.HandlerFunc, middlewares ...strut.MiddlewareFunc) {
	gg.group.Handle(method, patternToGin(path), gg.adapter.convertHandler(strut.Chain(handler, middlewares...)))
}

// Use registers middleware with the group.
func (gg *GinGroup) Use(middleware strut.MiddlewareFunc) {
	gg.group.Use(gg.adapter.convertMiddleware(middleware))
}

// Group creates a sub-group.
func (gg *GinGroup) Group(prefix strut.Pattern) strut.RouteGroup {
	return &GinGroup{group: gg.group.Group(patternToGin(prefix)), adapter: gg.adapter}
}

// convertHandler converts strut.HandlerFunc to gin.HandlerFunc.
func (ga *GinAdapter) convertHandler(handler strut.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := &GinContext{ctx: c}
		if err := handler(ctx); err != nil {
			ga.dispatchError(ctx, err)
		}
	}
}

// convertMiddleware converts strut.MiddlewareFunc to gin.HandlerFunc.
func (ga *GinAdapter) convertMiddleware(middleware strut.MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := &GinContext{ctx: c}
		next := func(strut.Context) error {
			c.Next()
			return nil
		}
		if err := middleware(next)(ctx); err != nil {
			ga.dispatchError(ctx, err)
		}
	}
}

func (ga *GinAdapter) dispatchError(ctx *GinContext, err error) {
	if ga.onError != nil {
		ga.onError(ctx, err)
		return
	}
	if herr, ok := err.(*strut.HttpError); ok {
		_ = ctx.JSON(herr.StatusCode, herr)
		return
	}
	_ = ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// GinContext implements strut.Context for Gin.
type GinContext struct {
	ctx *gin.Context
}

// Method returns the HTTP method.
func (gc *GinContext) Method() string {
	return gc.ctx.Request.Method
}

// Path returns the request path.
func (gc *GinContext) Path() string {
	return gc.ctx.Request.URL.Path
}

// Param returns a route parameter by name.
func (gc *GinContext) Param(name string) string {
	return gc.ctx.Param(name)
}

// QueryParam returns a query parameter by name.
func (gc *GinContext) QueryParam(name string) string {
	return gc.ctx.Query(name)
}

// QueryParams returns all query parameters.
func (gc *GinContext) QueryParams() url.Values {
	return gc.ctx.Request.URL.Query()
}

// Header returns a request header value.
func (gc *GinContext) Header(key string) string {
	return gc.ctx.GetHeader(key)
}

// SetHeader sets a response header.
func (gc *GinContext) SetHeader(key, value string) {
	gc.ctx.Header(key, value)
}

// Bind decodes the request body into target.
func (gc *GinContext) Bind(target any) error {
	return gc.ctx.ShouldBind(target)
}

// JSON writes a JSON response.
func (gc *GinContext) JSON(code int, body any) error {
	gc.ctx.JSON(code, body)
	return nil
}

// String writes a plain text response.
func (gc *GinContext) String(code int, s string) error {
	gc.ctx.String(code, "%s", s)
	return nil
}

// Blob writes a raw response with the given content type.
func (gc *GinContext) Blob(code int, contentType string, b []byte) error {
	gc.ctx.Data(code, contentType, b)
	return nil
}

// NoContent writes a bodyless response.
func (gc *GinContext) NoContent(code int) error {
	gc.ctx.Status(code)
	gc.ctx.Writer.WriteHeaderNow()
	return nil
}

// SetCookie attaches a cookie to the response.
func (gc *GinContext) SetCookie(cookie strut.Cookie) {
	http.SetCookie(gc.ctx.Writer, &http.Cookie{
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

// Written reports whether a response has been committed.
func (gc *GinContext) Written() bool {
	return gc.ctx.Writer.Written()
}

// Get retrieves per-request data.
func (gc *GinContext) Get(key string) any {
	value, _ := gc.ctx.Get(key)
	return value
}

// Set stores per-request data.
func (gc *GinContext) Set(key string, val any) {
	gc.ctx.Set(key, val)
}
