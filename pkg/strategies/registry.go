package strategies

import (
	"strings"
	"sync"

	"github.com/barforge/engine/pkg/domain"
)

// Registry maps a strategy name, case-insensitively, to its constructor.
// Lookup failures are reported by returning (nil, false) rather than an
// error — the factory never throws on an unknown name; the
// caller (the engine or the orchestrator) is responsible for turning that
// into an UnknownStrategy outcome.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// NewDefaultRegistry returns a registry pre-populated with the built-in
// strategies this module ships, each composed with the risk policies its
// definition's Risk block names via NewRiskManagedStrategy.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("BuyOnFirstBar", NewRiskManagedBuyOnFirstBar)
	return r
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a constructor under name, case-insensitively. Re-registering
// the same name overwrites the previous constructor.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[normalize(name)] = ctor
}

// MustRegister is Register for call sites (package init, default registry
// construction) where a nil constructor would be a programming error.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if ctor == nil {
		panic("strategies: nil constructor for " + name)
	}
	r.Register(name, ctor)
}

// CreateByName resolves name to a constructor and invokes it with a minimal
// definition carrying only the name. Returns ok=false if name is unknown.
func (r *Registry) CreateByName(name string) (Strategy, bool) {
	return r.CreateFromDefinition(domain.StrategyDefinition{Name: name})
}

// CreateFromDefinition resolves def.Name to a constructor and invokes it
// with the full definition. Returns ok=false if the name is unknown; a
// constructor error (e.g. a malformed risk parameter) is also reported as
// ok=false since the caller only distinguishes "resolved" from "not".
func (r *Registry) CreateFromDefinition(def domain.StrategyDefinition) (Strategy, bool) {
	r.mu.RLock()
	ctor, found := r.constructors[normalize(def.Name)]
	r.mu.RUnlock()
	if !found {
		return nil, false
	}
	s, err := ctor(def)
	if err != nil {
		return nil, false
	}
	return s, true
}
