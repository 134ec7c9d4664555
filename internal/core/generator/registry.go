package generator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/debug"
)

var (
	defaultMu        sync.Mutex
	defaultFactories = make(map[string]Factory)
)

// Register makes a factory available to every registry created afterwards.
// It is meant to be called from init functions; registering the same name
// twice panics.
func Register(qualified string, factory Factory) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if factory == nil {
		panic("generator: Register factory is nil")
	}
	if _, dup := defaultFactories[qualified]; dup {
		panic("generator: Register called twice for " + qualified)
	}
	defaultFactories[qualified] = factory
}

type handle struct {
	gen    Generator
	source string
}

// Registry resolves generator names to cached handles.
type Registry struct {
	scopes []string

	mu        sync.Mutex
	factories map[string]Factory
	handles   map[string]handle
}

// NewRegistry creates a registry over the given scopes, seeded with the
// factories registered through Register.
func NewRegistry(scopes []string) *Registry {
	r := &Registry{
		scopes:    append([]string(nil), scopes...),
		factories: make(map[string]Factory),
		handles:   make(map[string]handle),
	}

	defaultMu.Lock()
	for name, f := range defaultFactories {
		r.factories[name] = f
	}
	defaultMu.Unlock()
	return r
}

// Scopes returns the configured scopes in resolution order.
func (r *Registry) Scopes() []string {
	return append([]string(nil), r.scopes...)
}

// Register adds or replaces a factory. Replacing a factory does not affect
// handles already built from it; call Refresh for that.
func (r *Registry) Register(qualified string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[qualified] = factory
}

// Unregister removes factories and drops the handles built from them.
func (r *Registry) Unregister(qualified ...string) {
	r.mu.Lock()
	for _, q := range qualified {
		delete(r.factories, q)
	}
	r.mu.Unlock()
	r.Refresh(qualified...)
}

// Factories returns the registered qualified names, sorted.
func (r *Registry) Factories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the handle for name, constructing it on first use.
func (r *Registry) Resolve(name string) (Generator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[name]; ok {
		return h.gen, nil
	}

	for _, scope := range r.scopes {
		qualified := scope + "." + name
		factory, ok := r.factories[qualified]
		if !ok {
			continue
		}
		gen, err := factory()
		if err != nil {
			debug.Debug("Generator construction failed", "generator", qualified, "error", err)
			continue
		}
		r.handles[name] = handle{gen: gen, source: qualified}
		debug.Debug("Generator resolved", "name", name, "generator", qualified)
		return gen, nil
	}
	return nil, fault.New(fault.GeneratorNotFound, name)
}

// Refresh drops the cached handles built from the given qualified names so
// the next request resolves them again. It returns the names dropped.
func (r *Registry) Refresh(qualified ...string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources := make(map[string]bool, len(qualified))
	for _, q := range qualified {
		sources[q] = true
	}

	var dropped []string
	for name, h := range r.handles {
		if sources[h.source] {
			delete(r.handles, name)
			dropped = append(dropped, name)
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Kind selects the operation table.
type Kind int

const (
	// QueryKind selects row-returning operations (GET).
	QueryKind Kind = iota
	// ExecKind selects data-modifying operations (POST).
	ExecKind
)

// Invoke resolves object as `generator.operation` and runs the operation.
// Failures inside the operation are wrapped as QueryFailed or ExecuteFailed
// unless they already are faults.
func (r *Registry) Invoke(ctx context.Context, object string, kind Kind, in Input) (domain.Statement, error) {
	genName, opName, err := SplitName(object)
	if err != nil {
		return domain.Statement{}, err
	}

	gen, err := r.Resolve(genName)
	if err != nil {
		return domain.Statement{}, err
	}

	lookup, failure := gen.QueryOperation, fault.QueryFailed
	if kind == ExecKind {
		lookup, failure = gen.ExecOperation, fault.ExecuteFailed
	}
	fn, ok := lookup(opName)
	if !ok {
		return domain.Statement{}, fault.New(fault.OperationNotFound, object)
	}

	stmt, err := fn(ctx, in)
	if err != nil {
		if _, ok := fault.As(err); ok {
			return domain.Statement{}, err
		}
		return domain.Statement{}, fault.Wrap(failure, err, object)
	}
	if !stmt.Balanced() {
		return domain.Statement{}, fault.Wrap(failure,
			fmt.Errorf("statement has %d placeholders for %d arguments", stmt.Placeholders(), len(stmt.Args)), object)
	}
	return stmt, nil
}
