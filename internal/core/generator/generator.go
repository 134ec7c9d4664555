// Package generator dispatches ad-hoc queries to named SQL generators.
//
// A generator is addressed as `name` and resolved against an ordered list of
// scopes: the first registered factory named `scope.name` that constructs
// without error wins, and the resulting handle is reused for the lifetime of
// the registry. Operations are addressed as `name.operation`.
package generator

import (
	"context"
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// Input is what an operation sees of the request.
type Input struct {
	// Lang is the requested message language.
	Lang string

	// Params are the request parameters.
	Params *domain.ParameterSet

	// Records is the request body; always empty for query operations.
	Records []domain.Record
}

// Func produces a statement for one request.
type Func func(ctx context.Context, in Input) (domain.Statement, error)

// Generator exposes named operations.
type Generator interface {
	// QueryOperation returns a row-returning operation.
	QueryOperation(name string) (Func, bool)

	// ExecOperation returns a data-modifying operation.
	ExecOperation(name string) (Func, bool)
}

// Factory constructs a generator.
type Factory func() (Generator, error)

// Operations is a Generator backed by two maps.
type Operations struct {
	Query map[string]Func
	Exec  map[string]Func
}

// QueryOperation returns a row-returning operation.
func (o *Operations) QueryOperation(name string) (Func, bool) {
	fn, ok := o.Query[name]
	return fn, ok
}

// ExecOperation returns a data-modifying operation.
func (o *Operations) ExecOperation(name string) (Func, bool) {
	fn, ok := o.Exec[name]
	return fn, ok
}

var _ Generator = (*Operations)(nil)

// SplitName splits `generator.operation` on the first dot.
func SplitName(object string) (string, string, error) {
	gen, op, ok := strings.Cut(object, ".")
	if !ok || gen == "" || op == "" {
		return "", "", fault.New(fault.MalformedObjectName, object)
	}
	return gen, op, nil
}
