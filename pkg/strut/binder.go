package strut

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/color"
)

// Binder walks the declaration registry for a set of controller types,
// creates their singleton instances and registers one dispatcher per
// declared endpoint with the router. It runs once at startup. Configuration
// problems are fatal: they are reported loudly and the process exits
// non-zero before any request is served.
type Binder struct {
	registry  *Registry
	container *Container
	resolver  *Resolver
	parsers   *ParserRegistry
	routes    *RouteTable
	logger    *slog.Logger

	// disableBody turns declared body bindings into startup errors, for
	// deployments that opt out of body parsing entirely.
	disableBody bool

	// exitFn is swapped out by tests to observe fatal binds.
	exitFn func(int)
}

// NewBinder creates a binder over the given registries. Nil arguments fall
// back to the package defaults.
func NewBinder(registry *Registry, container *Container, parsers *ParserRegistry, logger *slog.Logger) *Binder {
	if registry == nil {
		registry = DefaultRegistry
	}
	if container == nil {
		container = NewContainer()
	}
	if parsers == nil {
		parsers = DefaultParserRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{
		registry:  registry,
		container: container,
		resolver:  NewResolver(parsers),
		parsers:   parsers,
		routes:    NewRouteTable(),
		logger:    logger,
		exitFn:    os.Exit,
	}
}

// Routes returns the table of routes bound so far.
func (b *Binder) Routes() *RouteTable {
	return b.routes
}

// Container returns the singleton container the binder resolves controller
// instances from.
func (b *Binder) Container() *Container {
	return b.container
}

// Bind registers every declared endpoint of the given controllers with the
// router, mounted under globalPrefix. Controllers are given as (possibly
// zero-value) pointers, e.g. &UserController{}; a pre-built instance becomes
// the singleton unless one already exists. Any configuration problem
// terminates the process.
func (b *Binder) Bind(router Router, controllers []any, globalPrefix string) {
	if err := b.bind(router, controllers, globalPrefix); err != nil {
		b.fatal(err)
	}
}

func (b *Binder) bind(router Router, controllers []any, globalPrefix string) error {
	prefix := normalizePrefix(globalPrefix)
	base := router.Mount(prefix)

	for _, controller := range controllers {
		ownerType, instance, err := controllerType(controller)
		if err != nil {
			return err
		}

		decl, ok := b.registry.Controller(ownerType)
		if !ok {
			return &StartupError{
				Controller: ownerType.String(),
				Message:    "no controller declaration found; declare it with strut.Declare before binding",
			}
		}
		if decl.declErr != nil {
			return &StartupError{Controller: ownerType.String(), Message: decl.declErr.Error()}
		}

		// First bind wins: a pre-built instance only takes effect when the
		// container has none, and Resolve reuses whatever is there.
		if instance != nil {
			b.container.Register(instance)
		}
		if _, err := b.container.Resolve(ownerType); err != nil {
			return &StartupError{Controller: ownerType.String(), Message: err.Error()}
		}

		if err := b.bindController(base, decl, Pattern(prefix)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binder) bindController(base RouteGroup, decl *ControllerDeclaration, prefix Pattern) error {
	baseParsers, err := b.pathParsers(decl.BasePath)
	if err != nil {
		return &StartupError{Controller: decl.Owner.String(), Message: err.Error()}
	}
	group := base.Group(decl.BasePath)

	for _, ep := range decl.Endpoints {
		if !HTTPVerbs[strings.ToUpper(ep.Verb)] {
			return &StartupError{
				Controller: decl.Owner.String(),
				Endpoint:   ep.MethodName,
				Message:    fmt.Sprintf("unknown HTTP verb %q", ep.Verb),
			}
		}

		pathTypes, err := b.pathParsers(ep.Path)
		if err != nil {
			return &StartupError{Controller: decl.Owner.String(), Endpoint: ep.MethodName, Message: err.Error()}
		}
		for name, parser := range baseParsers {
			if _, shadowed := pathTypes[name]; !shadowed {
				pathTypes[name] = parser
			}
		}

		if b.disableBody {
			for _, binding := range ep.Bindings {
				if binding.Source == SourceBody {
					return &StartupError{
						Controller: decl.Owner.String(),
						Endpoint:   ep.MethodName,
						Message:    "body parsing is disabled but the endpoint declares a body binding",
					}
				}
			}
		}

		disp, err := newDispatcher(ep, b.container, b.resolver, pathTypes)
		if err != nil {
			return &StartupError{Controller: decl.Owner.String(), Endpoint: ep.MethodName, Message: err.Error()}
		}

		middlewares := make([]MiddlewareFunc, 0, len(decl.Middlewares)+len(ep.Middlewares))
		middlewares = append(middlewares, decl.Middlewares...)
		middlewares = append(middlewares, ep.Middlewares...)

		verb := strings.ToUpper(ep.Verb)
		group.Register(verb, ep.Path, disp.Handle, middlewares...)

		fullPath := prefix.Join(decl.BasePath).Join(ep.Path)
		b.routes.Add(RouteInfo{
			Method:          verb,
			Path:            fullPath,
			Controller:      decl.Owner.Name(),
			Handler:         ep.MethodName,
			MiddlewareCount: len(middlewares),
		})
		b.logger.Debug("route bound",
			"method", verb,
			"path", fullPath.Raw(),
			"controller", decl.Owner.Name(),
			"handler", ep.MethodName)
	}
	return nil
}

// pathParsers maps the typed parameters of a pattern to their parsers. An
// unknown parameter type is a startup error, same as an unknown verb.
func (b *Binder) pathParsers(pattern Pattern) (map[string]ParamParser, error) {
	params, err := pattern.Params()
	if err != nil {
		return nil, err
	}
	parsers := make(map[string]ParamParser, len(params))
	for _, part := range params {
		if part.Kind != ParamPart || part.ParamType == "" {
			continue
		}
		parser, ok := b.parsers.Lookup(part.ParamType)
		if !ok {
			return nil, fmt.Errorf("no parameter parser registered for type %q in pattern %q", part.ParamType, pattern)
		}
		parsers[part.Value] = parser
	}
	return parsers, nil
}

func (b *Binder) fatal(err error) {
	color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "strut: fatal startup error")
	fmt.Fprintf(os.Stderr, "  %v\n", err)
	b.logger.Error("startup configuration error", "error", err)
	b.exitFn(1)
}

// controllerType normalizes a controller argument to its struct type. A
// non-nil pointer doubles as the instance to seed the container with;
// a reflect.Type selects the declaration without providing an instance.
func controllerType(controller any) (reflect.Type, any, error) {
	if t, ok := controller.(reflect.Type); ok {
		return indirectType(t), nil, nil
	}
	v := reflect.ValueOf(controller)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil, nil, &StartupError{Message: fmt.Sprintf("invalid controller value %v", controller)}
	}
	if v.Kind() == reflect.Pointer {
		return indirectType(v.Type()), controller, nil
	}
	return indirectType(v.Type()), nil, nil
}

// normalizePrefix collapses a global route prefix to either the empty string
// or a single-slash-prefixed path, so "api" and "/api" mount identically.
func normalizePrefix(prefix string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}
