package strategies

import "github.com/barforge/engine/pkg/domain"

// RiskManagedStrategy wraps a raw signal strategy and overlays the three
// pluggable risk policies named by a definition's Risk block onto every
// non-None signal the inner strategy emits, so a definition's risk
// configuration actually drives the order the engine places instead of
// being parsed and discarded.
type RiskManagedStrategy struct {
	inner          Strategy
	stopLoss       StopLossPolicy
	takeProfit     TakeProfitPolicy
	positionSizing PositionSizingPolicy
}

// NewRiskManagedStrategy builds the three risk policies from risk and wraps
// inner with them. An empty RiskBlock (zero-value TypeTag) resolves to each
// policy's "" default case in risk_factory.go.
func NewRiskManagedStrategy(inner Strategy, risk domain.RiskConfig) (*RiskManagedStrategy, error) {
	stopLoss, err := NewStopLossPolicy(risk.StopLoss.TypeTag, risk.StopLoss.Parameters)
	if err != nil {
		return nil, err
	}
	takeProfit, err := NewTakeProfitPolicy(risk.TakeProfit.TypeTag, risk.TakeProfit.Parameters)
	if err != nil {
		return nil, err
	}
	positionSizing, err := NewPositionSizingPolicy(risk.PositionSizing.TypeTag, risk.PositionSizing.Parameters)
	if err != nil {
		return nil, err
	}
	return &RiskManagedStrategy{
		inner:          inner,
		stopLoss:       stopLoss,
		takeProfit:     takeProfit,
		positionSizing: positionSizing,
	}, nil
}

func (s *RiskManagedStrategy) Name() string { return s.inner.Name() }

func (s *RiskManagedStrategy) Version() int { return s.inner.Version() }

func (s *RiskManagedStrategy) MainTimeframe() domain.Timeframe { return s.inner.MainTimeframe() }

func (s *RiskManagedStrategy) RequiredTimeframes() map[domain.Timeframe]int {
	return s.inner.RequiredTimeframes()
}

// Evaluate delegates the trade decision to inner, then, on a non-None
// signal, recomputes SuggestedStopLossPips/SuggestedTakeProfitPips/
// SuggestedVolume from the composed policies — overriding whatever the
// inner strategy suggested, since the risk block is the source of truth
// once a strategy is composed through this wrapper. A policy error
// downgrades the signal to None rather than placing an unsized order.
func (s *RiskManagedStrategy) Evaluate(ctx domain.SignalContext) domain.SignalResult {
	result := s.inner.Evaluate(ctx)
	if result.Signal == domain.SignalNone {
		return result
	}

	slPips, err := s.stopLoss.CalculateStopLossPips(ctx)
	if err != nil {
		return domain.SignalResult{Signal: domain.SignalNone, Reason: "risk: " + err.Error()}
	}
	tpPips, err := s.takeProfit.CalculateTakeProfitPips(ctx, slPips)
	if err != nil {
		return domain.SignalResult{Signal: domain.SignalNone, Reason: "risk: " + err.Error()}
	}
	volume, err := s.positionSizing.CalculateVolume(ctx, slPips)
	if err != nil {
		return domain.SignalResult{Signal: domain.SignalNone, Reason: "risk: " + err.Error()}
	}

	result.SuggestedStopLossPips = &slPips
	result.SuggestedTakeProfitPips = &tpPips
	result.SuggestedVolume = &volume
	return result
}

// Reset forwards to inner when it supports resetting.
func (s *RiskManagedStrategy) Reset() {
	if r, ok := s.inner.(interface{ Reset() }); ok {
		r.Reset()
	}
}

// NewRiskManagedBuyOnFirstBar is the Constructor the registry actually uses
// for "BuyOnFirstBar": it builds the raw signal strategy, then composes it
// with the risk policies def.Risk names.
func NewRiskManagedBuyOnFirstBar(def domain.StrategyDefinition) (Strategy, error) {
	raw, err := NewBuyOnFirstBar(def)
	if err != nil {
		return nil, err
	}
	return NewRiskManagedStrategy(raw, def.Risk)
}
