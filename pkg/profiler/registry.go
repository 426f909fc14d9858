package profiler

import (
	"context"

	"github.com/mixprof/mixprof/pkg/errors"
	"github.com/mixprof/mixprof/pkg/toolchain"
)

// Registry maps methods to their profiler implementations.
type Registry struct {
	profilers map[Method]Profiler
	order     []Method
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{profilers: make(map[Method]Profiler)}
}

// DefaultRegistry returns a registry with every built-in profiler
// registered in display order.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CProfile{})
	r.Register(&Pyinstrument{})
	r.Register(&PySpy{})
	r.Register(&Perf{})
	r.Register(&Valgrind{})
	r.Register(&Austin{})
	return r
}

// Register adds a profiler. Registering the same method twice replaces the
// earlier implementation but keeps its position.
func (r *Registry) Register(p Profiler) {
	if _, exists := r.profilers[p.Method()]; !exists {
		r.order = append(r.order, p.Method())
	}
	r.profilers[p.Method()] = p
}

// Get returns the profiler for a method.
func (r *Registry) Get(m Method) (Profiler, error) {
	p, ok := r.profilers[m]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidMethod, "no profiler registered for method %s", m)
	}
	return p, nil
}

// Methods returns all registered methods in registration order.
func (r *Registry) Methods() []Method {
	return append([]Method(nil), r.order...)
}

// Available returns the registered methods whose primary tool resolves on
// PATH. Used by the interactive picker so users only see runnable options.
func (r *Registry) Available(ctx context.Context) []Method {
	var available []Method
	for _, m := range r.order {
		st := toolchain.Probe(ctx, toolchain.Tool{Name: r.profilers[m].Tool()})
		if st.Installed {
			available = append(available, m)
		}
	}
	return available
}
