package services

import (
	"context"
	"reflect"
	"sync"
)

type entry struct {
	value   any
	factory func(ctx context.Context) (any, error)
}

// Registry maps service types to values or factories. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]entry)}
}

// RegisterValue makes value the service for type T in every container. A later registration for T wins.
func RegisterValue[T any](r *Registry, value T) {
	r.set(reflect.TypeFor[T](), entry{value: value})
}

// RegisterFactory makes factory create the service for type T, once per container.
func RegisterFactory[T any](r *Registry, factory func(ctx context.Context) (T, error)) {
	r.set(reflect.TypeFor[T](), entry{factory: func(ctx context.Context) (any, error) {
		return factory(ctx)
	}})
}

// NewContainer returns an empty Container resolving from this Registry.
func (r *Registry) NewContainer() *Container {
	return &Container{
		registry:  r,
		instances: make(map[reflect.Type]any),
	}
}

func (r *Registry) set(key reflect.Type, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[reflect.Type]entry)
	}

	r.entries[key] = e
}

func (r *Registry) lookup(key reflect.Type) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]

	return e, ok
}
