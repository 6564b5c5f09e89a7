package strategies

import "github.com/barforge/engine/pkg/domain"

// ConfigProvider yields strategy definitions from wherever they are
// persisted. When multiple versions share a name, implementations must
// resolve to the latest version. The engine core never talks to a
// database directly; it only holds this interface.
type ConfigProvider interface {
	LoadAll() ([]domain.StrategyDefinition, error)
	LoadByName(name string) (*domain.StrategyDefinition, error)
}

// InMemoryConfigProvider serves definitions held in a process-local slice.
// Used in tests and for backtests that construct their definition inline
// rather than reading it from a store.
type InMemoryConfigProvider struct {
	defs []domain.StrategyDefinition
}

// NewInMemoryConfigProvider wraps the given definitions.
func NewInMemoryConfigProvider(defs []domain.StrategyDefinition) *InMemoryConfigProvider {
	return &InMemoryConfigProvider{defs: defs}
}

// LoadAll returns the latest enabled version of every distinct name.
func (p *InMemoryConfigProvider) LoadAll() ([]domain.StrategyDefinition, error) {
	latest := make(map[string]domain.StrategyDefinition)
	for _, d := range p.defs {
		if !d.Enabled {
			continue
		}
		if cur, ok := latest[d.Name]; !ok || d.Version > cur.Version {
			latest[d.Name] = d
		}
	}
	out := make([]domain.StrategyDefinition, 0, len(latest))
	for _, d := range latest {
		out = append(out, d)
	}
	return out, nil
}

// LoadByName returns the latest version of name regardless of its enabled
// flag, or nil if no definition with that name exists.
func (p *InMemoryConfigProvider) LoadByName(name string) (*domain.StrategyDefinition, error) {
	var best *domain.StrategyDefinition
	for i := range p.defs {
		d := p.defs[i]
		if d.Name != name {
			continue
		}
		if best == nil || d.Version > best.Version {
			dc := d
			best = &dc
		}
	}
	return best, nil
}
