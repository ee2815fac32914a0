package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Closer is implemented by services that hold resources, like a unit of work with an open transaction.
type Closer interface {
	Close(ctx context.Context) error
}

// Container caches the services resolved for one handler invocation. It is not safe for concurrent use.
type Container struct {
	registry  *Registry
	instances map[reflect.Type]any
	resolved  []any
	created   []any
}

// Get returns the service of type T, creating it on first use in this container.
func Get[T any](ctx context.Context, c *Container) (T, error) {
	var zero T

	key := reflect.TypeFor[T]()

	if instance, ok := c.instances[key]; ok {
		typed, _ := instance.(T)
		return typed, nil
	}

	e, ok := c.registry.lookup(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrServiceNotRegistered, key)
	}

	instance := e.value

	if e.factory != nil {
		created, err := e.factory(ctx)
		if err != nil {
			return zero, errors.Join(fmt.Errorf("%w: %s", ErrFactoryFailed, key), err)
		}

		instance = created
		c.created = append(c.created, created)
	}

	c.instances[key] = instance
	c.resolved = append(c.resolved, instance)

	typed, _ := instance.(T)

	return typed, nil
}

// Instances returns the services resolved so far, in resolution order.
func (c *Container) Instances() []any {
	out := make([]any, len(c.resolved))
	copy(out, c.resolved)

	return out
}

// Close closes the services this container created through factories, newest first.
// Values registered with RegisterValue are shared and never closed here.
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	for i := len(c.created) - 1; i >= 0; i-- {
		if closer, ok := c.created[i].(Closer); ok {
			if err := closer.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}

	c.created = nil

	return errors.Join(errs...)
}
