package sdk

import "context"

// Provider executes one capability.
//
// Providers build their Definition once, at construction, and return the same
// value on every call. Execute must tolerate malformed parameters: a bad limit
// means no limit and a blank locale means the ambient locale. ec may be nil.
type Provider interface {
	Definition() Definition
	Execute(ctx context.Context, params Parameters, ec *ExecutionContext) (any, error)
}

// ExecuteFunc is the signature of a provider's Execute method.
type ExecuteFunc func(ctx context.Context, params Parameters, ec *ExecutionContext) (any, error)

// FuncProvider adapts a definition and a function into a Provider.
type FuncProvider struct {
	def Definition
	fn  ExecuteFunc
}

// NewFuncProvider creates a provider backed by fn.
func NewFuncProvider(def Definition, fn ExecuteFunc) *FuncProvider {
	return &FuncProvider{def: def, fn: fn}
}

func (p *FuncProvider) Definition() Definition {
	return p.def
}

func (p *FuncProvider) Execute(ctx context.Context, params Parameters, ec *ExecutionContext) (any, error) {
	return p.fn(ctx, params, ec)
}
