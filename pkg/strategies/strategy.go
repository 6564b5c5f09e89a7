// Package strategies holds the signal-strategy capability set, the
// pluggable risk policies composed with it, and the registry that
// resolves a StrategyDefinition's name to a constructor — replacing the
// reflection-based plugin discovery of the original source with an
// explicit mapping populated at process init.
package strategies

import "github.com/barforge/engine/pkg/domain"

// Strategy is the capability set a signal strategy must expose. Evaluate
// must not mutate the engine's bar cache and is otherwise free to carry
// its own internal state (e.g. "already fired").
type Strategy interface {
	Name() string
	Version() int
	MainTimeframe() domain.Timeframe
	RequiredTimeframes() map[domain.Timeframe]int
	Evaluate(ctx domain.SignalContext) domain.SignalResult
}

// StopLossPolicy computes a stop-loss distance in pips for a candidate entry.
type StopLossPolicy interface {
	CalculateStopLossPips(ctx domain.SignalContext) (float64, error)
}

// TakeProfitPolicy computes a take-profit distance in pips, given the
// stop-loss distance already chosen for the same entry.
type TakeProfitPolicy interface {
	CalculateTakeProfitPips(ctx domain.SignalContext, stopLossPips float64) (float64, error)
}

// PositionSizingPolicy computes the lot volume for a candidate entry, given
// the stop-loss distance already chosen for the same entry.
type PositionSizingPolicy interface {
	CalculateVolume(ctx domain.SignalContext, stopLossPips float64) (float64, error)
}

// Constructor builds a Strategy instance from its versioned definition.
type Constructor func(def domain.StrategyDefinition) (Strategy, error)
