package strut

import (
	"fmt"
	"reflect"
	"sync"
)

// Container holds exactly one instance per controller type for the process
// lifetime. Instances are created lazily at bind time; dispatchers look them
// up by type on every request instead of holding them directly.
type Container struct {
	mu        sync.RWMutex
	instances map[reflect.Type]any
	providers map[reflect.Type]func() (any, error)
}

// NewContainer creates an empty instance container.
func NewContainer() *Container {
	return &Container{
		instances: make(map[reflect.Type]any),
		providers: make(map[reflect.Type]func() (any, error)),
	}
}

// Provide registers a constructor for type T. The constructor runs at most
// once, when the first Resolve for T finds no instance.
func Provide[T any](c *Container, ctor func() (*T, error)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[t] = func() (any, error) { return ctor() }
}

// Register stores instance as the singleton for its type. If an instance for
// that type already exists it is left untouched: the first registration wins.
func (c *Container) Register(instance any) {
	t := indirectType(reflect.TypeOf(instance))
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.instances[t]; exists {
		return
	}
	c.instances[t] = instance
}

// Resolve returns the singleton for t, creating it on first use. Creation
// runs the registered provider for t, or falls back to a zero-value instance
// for struct types.
func (c *Container) Resolve(t reflect.Type) (any, error) {
	t = indirectType(t)

	c.mu.RLock()
	instance, ok := c.instances[t]
	c.mu.RUnlock()
	if ok {
		return instance, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if instance, ok := c.instances[t]; ok {
		return instance, nil
	}

	if provider, ok := c.providers[t]; ok {
		instance, err := provider()
		if err != nil {
			return nil, fmt.Errorf("provider for %s: %w", t, err)
		}
		c.instances[t] = instance
		return instance, nil
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("no instance or provider registered for %s", t)
	}
	instance = reflect.New(t).Interface()
	c.instances[t] = instance
	return instance, nil
}

// Has reports whether an instance for t already exists.
func (c *Container) Has(t reflect.Type) bool {
	t = indirectType(t)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[t]
	return ok
}

// TypeOf returns the reflect type key used for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
