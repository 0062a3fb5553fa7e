package strut

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Resolver extracts typed argument values from a request according to the
// parameter bindings of one endpoint. A single Resolver is shared by all
// dispatchers; it holds no per-request state.
type Resolver struct {
	validate *validator.Validate
	parsers  *ParserRegistry
}

// NewResolver creates a resolver using the given parser registry, falling
// back to the default registry when nil.
func NewResolver(parsers *ParserRegistry) *Resolver {
	if parsers == nil {
		parsers = DefaultParserRegistry
	}
	return &Resolver{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		parsers:  parsers,
	}
}

// boundParam is the bind-time resolution plan for one parameter binding:
// the binding itself plus everything derived from the method signature and
// the route pattern, so per-request work stays minimal.
type boundParam struct {
	binding  ParameterBinding
	argType  reflect.Type
	bodyType reflect.Type // body bindings only
	parser   *ParamParser // typed path parameters only
}

// plan validates a binding against the method signature and the typed route
// parameters, and precomputes its resolution strategy.
func (r *Resolver) plan(binding ParameterBinding, argTypes []reflect.Type, pathTypes map[string]ParamParser) (boundParam, error) {
	if binding.Index < 0 || binding.Index >= len(argTypes) {
		return boundParam{}, fmt.Errorf("%s binding index %d is out of range for a method with %d arguments",
			binding.Source, binding.Index, len(argTypes))
	}

	p := boundParam{binding: binding, argType: argTypes[binding.Index]}
	switch binding.Source {
	case SourceBody:
		target := binding.Target
		if target == nil {
			target = indirectType(p.argType)
		}
		p.bodyType = target

	case SourcePath:
		if binding.Name == "" {
			break
		}
		if parser, ok := pathTypes[binding.Name]; ok {
			if parser.GoType != p.argType {
				return boundParam{}, fmt.Errorf("path parameter %q is declared as %s but the method argument %d is %s",
					binding.Name, parser.GoType, binding.Index, p.argType)
			}
			p.parser = &parser
			break
		}
		if p.argType.Kind() != reflect.String {
			return boundParam{}, fmt.Errorf("untyped path parameter %q requires a string argument, method argument %d is %s",
				binding.Name, binding.Index, p.argType)
		}

	case SourceQuery:
		if binding.Name != "" && p.argType.Kind() != reflect.String {
			return boundParam{}, fmt.Errorf("query parameter %q requires a string argument, method argument %d is %s",
				binding.Name, binding.Index, p.argType)
		}

	case SourceQueryMap:
		if p.argType != reflect.TypeOf(QueryMap{}) {
			return boundParam{}, fmt.Errorf("querymap binding requires a strut.QueryMap argument, method argument %d is %s",
				binding.Index, p.argType)
		}

	case SourceContext:
		if p.argType != contextType {
			return boundParam{}, fmt.Errorf("context binding requires a strut.Context argument, method argument %d is %s",
				binding.Index, p.argType)
		}

	default:
		return boundParam{}, fmt.Errorf("unknown binding source %d", binding.Source)
	}
	return p, nil
}

var contextType = reflect.TypeOf((*Context)(nil)).Elem()

// resolve produces the argument value for one binding. The second return
// reports whether a value was populated; bindings with an absent name
// populate nothing and leave the argument unset.
func (r *Resolver) resolve(c Context, p boundParam) (reflect.Value, bool, error) {
	switch p.binding.Source {
	case SourceBody:
		return r.resolveBody(c, p)

	case SourcePath:
		if p.binding.Name == "" {
			return reflect.Value{}, false, nil
		}
		raw := c.Param(p.binding.Name)
		if p.parser == nil {
			// Convert covers named string types, which plan admits by kind.
			return reflect.ValueOf(raw).Convert(p.argType), true, nil
		}
		parsed, err := p.parser.Parse(c, raw)
		if err != nil {
			return reflect.Value{}, false, ErrBadRequest(fmt.Sprintf("invalid path parameter %q: %v", p.binding.Name, err))
		}
		return reflect.ValueOf(parsed), true, nil

	case SourceQuery:
		if p.binding.Name == "" {
			return reflect.Value{}, false, nil
		}
		return reflect.ValueOf(c.QueryParam(p.binding.Name)).Convert(p.argType), true, nil

	case SourceQueryMap:
		return reflect.ValueOf(NewQueryMap(c)), true, nil
	}
	return reflect.Value{}, false, fmt.Errorf("source %s cannot be resolved from the request", p.binding.Source)
}

// resolveBody decodes the request body into the planned target type and runs
// struct validation. Both decode and validation failures surface as
// ValidationError.
func (r *Resolver) resolveBody(c Context, p boundParam) (reflect.Value, bool, error) {
	target := reflect.New(p.bodyType)
	if err := c.Bind(target.Interface()); err != nil {
		return reflect.Value{}, false, NewValidationError(err)
	}
	if !p.binding.SkipValidation && p.bodyType.Kind() == reflect.Struct {
		if err := r.validate.Struct(target.Interface()); err != nil {
			return reflect.Value{}, false, NewValidationError(err)
		}
	}
	if p.argType.Kind() == reflect.Pointer {
		return target, true, nil
	}
	return target.Elem(), true, nil
}
