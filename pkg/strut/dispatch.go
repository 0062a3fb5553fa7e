package strut

import (
	"fmt"
	"net/http"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// dispatcher is the per-endpoint handler built by the binder. Per request it
// resolves the controller singleton, fans out parameter resolution, invokes
// the endpoint method and normalizes the result onto the response. Every
// failure along the way is returned into the router's error path; nothing
// escapes as a panic.
type dispatcher struct {
	owner      reflect.Type
	ownerName  string
	methodName string

	fn       reflect.Value // method func, receiver as first argument
	argTypes []reflect.Type

	plans      []boundParam
	ctxIndices []int

	returnsError bool
	resultIndex  int // index into the method's results, -1 when none

	container *Container
	resolver  *Resolver
}

// newDispatcher validates the endpoint declaration against the controller's
// method set and builds the dispatch plan. Errors are startup-configuration
// errors; the binder reports them fatally.
func newDispatcher(decl *EndpointDeclaration, container *Container, resolver *Resolver, pathTypes map[string]ParamParser) (*dispatcher, error) {
	method, ok := reflect.PointerTo(decl.Owner).MethodByName(decl.MethodName)
	if !ok {
		return nil, fmt.Errorf("method %s does not exist on *%s", decl.MethodName, decl.Owner)
	}

	mt := method.Func.Type()
	numIn := mt.NumIn() - 1 // receiver excluded
	argTypes := make([]reflect.Type, numIn)
	for i := 0; i < numIn; i++ {
		argTypes[i] = mt.In(i + 1)
	}

	d := &dispatcher{
		owner:      decl.Owner,
		ownerName:  decl.Owner.Name(),
		methodName: decl.MethodName,
		fn:         method.Func,
		argTypes:   argTypes,
		container:  container,
		resolver:   resolver,
	}

	seen := make(map[int]bool, len(decl.Bindings))
	for _, binding := range decl.Bindings {
		if seen[binding.Index] {
			return nil, fmt.Errorf("argument index %d is bound twice", binding.Index)
		}
		seen[binding.Index] = true

		plan, err := resolver.plan(binding, argTypes, pathTypes)
		if err != nil {
			return nil, err
		}
		if binding.Source == SourceContext {
			d.ctxIndices = append(d.ctxIndices, binding.Index)
			continue
		}
		d.plans = append(d.plans, plan)
	}

	if err := d.planResults(mt); err != nil {
		return nil, err
	}
	return d, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// planResults classifies the method's return signature: nothing, a single
// value, a single error, or a value plus a trailing error.
func (d *dispatcher) planResults(mt reflect.Type) error {
	d.resultIndex = -1
	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errorType {
			d.returnsError = true
		} else {
			d.resultIndex = 0
		}
	case 2:
		if mt.Out(1) != errorType {
			return fmt.Errorf("method %s: second return value must be error, got %s", d.methodName, mt.Out(1))
		}
		d.resultIndex = 0
		d.returnsError = true
	default:
		return fmt.Errorf("method %s: at most two return values are supported, got %d", d.methodName, mt.NumOut())
	}
	return nil
}

// Handle runs one dispatch. It is the HandlerFunc registered on the router
// for the endpoint.
func (d *dispatcher) Handle(c Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic dispatching %s.%s: %v", d.ownerName, d.methodName, r)
		}
	}()

	instance, err := d.container.Resolve(d.owner)
	if err != nil {
		return fmt.Errorf("resolving controller %s: %w", d.ownerName, err)
	}

	args := make([]reflect.Value, len(d.argTypes))

	// Independent extractions fan out concurrently; the method is invoked
	// only once all of them settle. The first failure wins and the other
	// results are discarded.
	var g errgroup.Group
	for _, plan := range d.plans {
		plan := plan
		g.Go(func() error {
			value, populated, err := d.resolver.resolve(c, plan)
			if err != nil {
				return err
			}
			if populated {
				args[plan.binding.Index] = value
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, index := range d.ctxIndices {
		args[index] = reflect.ValueOf(c)
	}
	for i := range args {
		if !args[i].IsValid() {
			args[i] = reflect.Zero(d.argTypes[i])
		}
	}

	out := d.fn.Call(append([]reflect.Value{reflect.ValueOf(instance)}, args...))

	if d.returnsError {
		if errValue := out[len(out)-1]; !errValue.IsNil() {
			return errValue.Interface().(error)
		}
	}
	if c.Written() {
		return nil
	}
	if d.resultIndex < 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return writeResult(c, out[d.resultIndex].Interface())
}

// writeResult maps an endpoint result onto the response: finished markers
// are left alone, *Response values carry their own status and headers,
// structured values are sent as JSON and raw values pass through unchanged.
func writeResult(c Context, result any) error {
	if finisher, ok := result.(Finisher); ok && finisher.ResponseFinished() {
		return nil
	}

	switch v := result.(type) {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case *Response:
		if v == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return v.write(c)
	case string:
		return c.String(http.StatusOK, v)
	case []byte:
		return c.Blob(http.StatusOK, "application/octet-stream", v)
	default:
		return c.JSON(http.StatusOK, v)
	}
}
