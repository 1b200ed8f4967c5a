// Package registry maps effect variants to presentation-layer handlers.
//
// A Registry is an explicitly constructed object with session lifecycle, not
// a process-wide singleton, so tests stay hermetic. Dispatch is synchronous
// and keyed on the effect's static kind tag.
package registry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lightfold/statefx/effect"
	"github.com/lightfold/statefx/intent"
)

// Env is the capability surface handed to a handler for one dispatch.
// Handlers never receive the container itself; the only sanctioned feedback
// path is Resolve, which posts the resolution event for the interactive
// effect being handled.
type Env struct {
	resolve func(intent.Token, effect.ActionKind)
}

// NewEnv builds an Env whose Resolve forwards to the given post capability.
func NewEnv(resolve func(intent.Token, effect.ActionKind)) Env {
	return Env{resolve: resolve}
}

// Resolve posts the user's chosen action for the interactive effect carrying
// tok. It is a no-op in an Env without a resolver (e.g. test doubles).
func (e Env) Resolve(tok intent.Token, action effect.ActionKind) {
	if e.resolve != nil {
		e.resolve(tok, action)
	}
}

// Handler is the type-erased form stored in the table. Register wraps typed
// handlers so dispatch stays type-directed without reflection.
type Handler func(ctx context.Context, env Env, eff effect.Effect)

// Registry is the handler table. Writes are expected during setup; they are
// monitor-guarded so concurrent registration is still safe.
type Registry struct {
	logger *zap.Logger

	mu       sync.Mutex
	handlers map[effect.Kind]Handler
	misses   map[effect.Kind]int
}

func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:   logger,
		handlers: map[effect.Kind]Handler{},
		misses:   map[effect.Kind]int{},
	}
}

// Register installs fn as the handler for the effect variant V,
// overwriting any previous handler for that variant (which is how tests
// install doubles).
func Register[V effect.Effect](r *Registry, fn func(ctx context.Context, env Env, eff V)) {
	var zero V
	kind := zero.Kind()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = func(ctx context.Context, env Env, eff effect.Effect) {
		v, ok := eff.(V)
		if !ok {
			// Kinds are bound to variants at compile time, so this is a
			// bug in the code.
			r.logger.Error("effect kind bound to wrong variant",
				zap.String("kind", string(kind)),
			)
			return
		}
		fn(ctx, env, v)
	}
}

// Dispatch invokes the handler registered for eff's kind. A variant with no
// handler is a reportable no-op: it logs a warning, bumps an observable
// counter, and reports false.
func (r *Registry) Dispatch(ctx context.Context, env Env, eff effect.Effect) bool {
	r.mu.Lock()
	h, ok := r.handlers[eff.Kind()]
	if !ok {
		r.misses[eff.Kind()]++
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Warn("no handler registered for effect",
			zap.String("kind", string(eff.Kind())),
		)
		return false
	}
	h(ctx, env, eff)
	return true
}

// Misses returns how many dispatches of kind found no handler.
func (r *Registry) Misses(kind effect.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.misses[kind]
}
