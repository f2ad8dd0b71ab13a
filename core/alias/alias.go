// Package alias holds the shell's alias registry.
//
// An alias maps a command name to either an argument-vector expansion or an
// in-process callable. Lookups expand recursively: an alias whose first
// token is itself an alias is followed until a callable, a non-alias token,
// or a cycle is reached. On a cycle the token is returned verbatim rather
// than looping.
package alias

import (
	"sort"
	"sync"
)

// Kind discriminates the alias value variants.
type Kind int

const (
	// KindNone means no alias is defined for the name.
	KindNone Kind = iota
	// KindExpansion is an argument-vector expansion.
	KindExpansion
	// KindCallable is an in-process callable.
	KindCallable
)

// Value is the result of an alias lookup.
type Value struct {
	Kind      Kind
	Expansion []string
	Callable  *Callable
}

// None reports whether no alias was found.
func (v Value) None() bool { return v.Kind == KindNone }

// Registry is a thread-safe alias table.
type Registry struct {
	mu  sync.RWMutex
	raw map[string]Value
}

// NewRegistry creates an empty alias registry.
func NewRegistry() *Registry {
	return &Registry{raw: make(map[string]Value)}
}

// Define binds name to an argument-vector expansion.
func (r *Registry) Define(name string, expansion ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw[name] = Value{Kind: KindExpansion, Expansion: expansion}
}

// DefineCallable binds the callable under its own name.
func (r *Registry) DefineCallable(c *Callable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw[c.Name] = Value{Kind: KindCallable, Callable: c}
}

// Undefine removes an alias.
func (r *Registry) Undefine(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.raw, name)
}

// Raw returns the unexpanded binding for name.
func (r *Registry) Raw(name string) (Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.raw[name]
	return v, ok
}

// Names returns all defined alias names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.raw))
	for name := range r.raw {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves name to its fully expanded value. An expansion whose
// leftmost token is another alias is followed recursively; arguments
// accumulated along the chain are preserved. A chain that ends at a
// callable yields the callable partially applied with the accumulated
// arguments.
func (r *Registry) Lookup(name string) Value {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, ok := r.raw[name]
	if !ok {
		return Value{Kind: KindNone}
	}
	return r.eval(raw, map[string]bool{name: true}, nil)
}

func (r *Registry) eval(v Value, seen map[string]bool, accArgs []string) Value {
	switch v.Kind {
	case KindCallable:
		if len(accArgs) == 0 {
			return v
		}
		return Value{Kind: KindCallable, Callable: v.Callable.withArgs(accArgs)}

	case KindExpansion:
		if len(v.Expansion) == 0 {
			return Value{Kind: KindExpansion, Expansion: accArgs}
		}
		head, rest := v.Expansion[0], v.Expansion[1:]
		next, isAlias := r.raw[head]
		if seen[head] || !isAlias {
			// Self-referential aliases pass the token through verbatim.
			out := make([]string, 0, len(v.Expansion)+len(accArgs))
			out = append(out, v.Expansion...)
			out = append(out, accArgs...)
			return Value{Kind: KindExpansion, Expansion: out}
		}
		seen[head] = true
		args := make([]string, 0, len(rest)+len(accArgs))
		args = append(args, rest...)
		args = append(args, accArgs...)
		return r.eval(next, seen, args)

	default:
		return Value{Kind: KindNone}
	}
}
