package strut

import (
	"fmt"
	"reflect"
	"sync"
)

// Source identifies where a parameter binding takes its value from.
type Source int

const (
	// SourceBody binds the decoded and validated request body.
	SourceBody Source = iota
	// SourcePath binds a route parameter by name.
	SourcePath
	// SourceQuery binds a query parameter by name.
	SourceQuery
	// SourceQueryMap binds a QueryMap over all query parameters.
	SourceQueryMap
	// SourceContext injects the request context at dispatch time.
	SourceContext
)

// String returns the declaration name of the source.
func (s Source) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceQueryMap:
		return "querymap"
	case SourceContext:
		return "context"
	}
	return "unknown"
}

// ParameterBinding declares how one argument of an endpoint method is
// extracted from the request.
type ParameterBinding struct {
	// Index is the position of the argument in the method signature,
	// excluding the receiver.
	Index int

	// Source is where the value comes from.
	Source Source

	// Name is the route or query parameter name. Path and query bindings
	// with an empty name populate nothing.
	Name string

	// Target overrides the type the body is decoded into. When nil the
	// method's own parameter type is used.
	Target reflect.Type

	// SkipValidation disables struct validation for a body binding.
	SkipValidation bool
}

// EndpointDeclaration describes one HTTP-verb+path+handler-method route
// within a controller.
type EndpointDeclaration struct {
	Owner       reflect.Type
	MethodName  string
	Verb        string
	Path        Pattern
	Middlewares []MiddlewareFunc
	Bindings    []ParameterBinding
}

// ControllerDeclaration groups the endpoints of one controller type under a
// shared base path and middleware set.
type ControllerDeclaration struct {
	Owner       reflect.Type
	BasePath    Pattern
	Middlewares []MiddlewareFunc
	Endpoints   []*EndpointDeclaration

	// declErr holds the first declaration mistake; the binder surfaces it
	// as a fatal startup error.
	declErr error
}

// Registry is the process-wide store of controller declarations. It is
// written at declaration time and read-only from bind time onwards.
type Registry struct {
	mu          sync.RWMutex
	controllers map[reflect.Type]*ControllerDeclaration
}

// NewRegistry creates an empty declaration registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[reflect.Type]*ControllerDeclaration)}
}

// DefaultRegistry is the registry the package-level declaration helpers
// write to.
var DefaultRegistry = NewRegistry()

// Controller retrieves the declaration for a controller type.
func (r *Registry) Controller(t reflect.Type) (*ControllerDeclaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decl, ok := r.controllers[t]
	return decl, ok
}

// Reset removes all declarations. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controllers = make(map[reflect.Type]*ControllerDeclaration)
}

func (r *Registry) declare(decl *ControllerDeclaration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.controllers[decl.Owner]; exists {
		// Mark the stored declaration too: it is the one the binder reads,
		// and a redeclaration must fail the bind, not vanish.
		err := fmt.Errorf("controller %s is already declared", decl.Owner)
		if existing.declErr == nil {
			existing.declErr = err
		}
		decl.declErr = err
		return
	}
	r.controllers[decl.Owner] = decl
}

// ControllerBuilder declares a controller and its endpoints fluently.
type ControllerBuilder struct {
	decl *ControllerDeclaration
}

// Declare registers a controller declaration for type T in the default
// registry and returns a builder for its endpoints.
func Declare[T any](basePath Pattern) *ControllerBuilder {
	return DeclareIn[T](DefaultRegistry, basePath)
}

// DeclareIn registers a controller declaration for type T in the given
// registry.
func DeclareIn[T any](r *Registry, basePath Pattern) *ControllerBuilder {
	decl := &ControllerDeclaration{
		Owner:    reflect.TypeOf((*T)(nil)).Elem(),
		BasePath: basePath,
	}
	r.declare(decl)
	return &ControllerBuilder{decl: decl}
}

// Use appends controller-level middleware. Controller middleware runs before
// endpoint middleware.
func (b *ControllerBuilder) Use(middlewares ...MiddlewareFunc) *ControllerBuilder {
	b.decl.Middlewares = append(b.decl.Middlewares, middlewares...)
	return b
}

// Route declares an endpoint with an explicit HTTP verb.
func (b *ControllerBuilder) Route(verb, methodName string, path Pattern) *EndpointBuilder {
	ep := &EndpointDeclaration{
		Owner:      b.decl.Owner,
		MethodName: methodName,
		Verb:       verb,
		Path:       path,
	}
	b.decl.Endpoints = append(b.decl.Endpoints, ep)
	return &EndpointBuilder{controller: b, decl: ep}
}

// Get declares a GET endpoint.
func (b *ControllerBuilder) Get(methodName string, path Pattern) *EndpointBuilder {
	return b.Route("GET", methodName, path)
}

// Post declares a POST endpoint.
func (b *ControllerBuilder) Post(methodName string, path Pattern) *EndpointBuilder {
	return b.Route("POST", methodName, path)
}

// Put declares a PUT endpoint.
func (b *ControllerBuilder) Put(methodName string, path Pattern) *EndpointBuilder {
	return b.Route("PUT", methodName, path)
}

// Delete declares a DELETE endpoint.
func (b *ControllerBuilder) Delete(methodName string, path Pattern) *EndpointBuilder {
	return b.Route("DELETE", methodName, path)
}

// Patch declares a PATCH endpoint.
func (b *ControllerBuilder) Patch(methodName string, path Pattern) *EndpointBuilder {
	return b.Route("PATCH", methodName, path)
}

// Options declares an OPTIONS endpoint.
func (b *ControllerBuilder) Options(methodName string, path Pattern) *EndpointBuilder {
	return b.Route("OPTIONS", methodName, path)
}

// Head declares a HEAD endpoint.
func (b *ControllerBuilder) Head(methodName string, path Pattern) *EndpointBuilder {
	return b.Route("HEAD", methodName, path)
}

// EndpointBuilder declares the middleware and parameter bindings of one
// endpoint. Its verb methods hand control back to the controller builder so
// declarations chain naturally.
type EndpointBuilder struct {
	controller *ControllerBuilder
	decl       *EndpointDeclaration
}

// Use appends endpoint-level middleware.
func (e *EndpointBuilder) Use(middlewares ...MiddlewareFunc) *EndpointBuilder {
	e.decl.Middlewares = append(e.decl.Middlewares, middlewares...)
	return e
}

// BindingOption tweaks a parameter binding.
type BindingOption func(*ParameterBinding)

// SkipValidation disables struct validation for a body binding.
func SkipValidation() BindingOption {
	return func(b *ParameterBinding) { b.SkipValidation = true }
}

// BodyAs overrides the type a body binding decodes into.
func BodyAs(prototype any) BindingOption {
	return func(b *ParameterBinding) {
		t := reflect.TypeOf(prototype)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		b.Target = t
	}
}

// Body binds the request body at the given argument index.
func (e *EndpointBuilder) Body(index int, opts ...BindingOption) *EndpointBuilder {
	return e.bind(ParameterBinding{Index: index, Source: SourceBody}, opts)
}

// Param binds the named route parameter at the given argument index.
func (e *EndpointBuilder) Param(index int, name string) *EndpointBuilder {
	return e.bind(ParameterBinding{Index: index, Source: SourcePath, Name: name}, nil)
}

// Query binds the named query parameter at the given argument index.
func (e *EndpointBuilder) Query(index int, name string) *EndpointBuilder {
	return e.bind(ParameterBinding{Index: index, Source: SourceQuery, Name: name}, nil)
}

// Queries binds a QueryMap over all query parameters at the given argument
// index.
func (e *EndpointBuilder) Queries(index int) *EndpointBuilder {
	return e.bind(ParameterBinding{Index: index, Source: SourceQueryMap}, nil)
}

// Context injects the request context at the given argument index. The
// argument must be declared as strut.Context.
func (e *EndpointBuilder) Context(index int) *EndpointBuilder {
	return e.bind(ParameterBinding{Index: index, Source: SourceContext}, nil)
}

func (e *EndpointBuilder) bind(binding ParameterBinding, opts []BindingOption) *EndpointBuilder {
	for _, opt := range opts {
		opt(&binding)
	}
	for _, existing := range e.decl.Bindings {
		if existing.Index == binding.Index {
			e.fail(fmt.Errorf("endpoint %s: argument index %d is bound twice", e.decl.MethodName, binding.Index))
			return e
		}
	}
	e.decl.Bindings = append(e.decl.Bindings, binding)
	return e
}

func (e *EndpointBuilder) fail(err error) {
	if e.controller.decl.declErr == nil {
		e.controller.decl.declErr = err
	}
}

// Route declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Route(verb, methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Route(verb, methodName, path)
}

// Get declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Get(methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Get(methodName, path)
}

// Post declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Post(methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Post(methodName, path)
}

// Put declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Put(methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Put(methodName, path)
}

// Delete declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Delete(methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Delete(methodName, path)
}

// Patch declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Patch(methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Patch(methodName, path)
}

// Options declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Options(methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Options(methodName, path)
}

// Head declares the next endpoint on the owning controller.
func (e *EndpointBuilder) Head(methodName string, path Pattern) *EndpointBuilder {
	return e.controller.Head(methodName, path)
}
