package strategies

import "github.com/barforge/engine/pkg/domain"

// BuyOnFirstBar is the built-in trivial signal strategy used by seed tests:
// it emits a single raw Buy (no stop-loss/take-profit/volume opinion of its
// own) the first time its main timeframe's bar history is non-empty, then
// stays quiet until Reset is called. The registry composes it with the risk
// policies a definition's Risk block names; see NewRiskManagedBuyOnFirstBar.
type BuyOnFirstBar struct {
	def      domain.StrategyDefinition
	hasFired bool
}

// NewBuyOnFirstBar is a Constructor building the raw, risk-unaware signal
// strategy directly; NewRiskManagedBuyOnFirstBar is what the registry
// actually registers under the "BuyOnFirstBar" name.
func NewBuyOnFirstBar(def domain.StrategyDefinition) (Strategy, error) {
	if def.MainTimeframe == "" {
		def.MainTimeframe = domain.M5
	}
	if def.Name == "" {
		def.Name = "BuyOnFirstBar"
	}
	if def.RequiredTimeframes == nil {
		def.RequiredTimeframes = map[domain.Timeframe]int{def.MainTimeframe: 1}
	}
	return &BuyOnFirstBar{def: def}, nil
}

func (s *BuyOnFirstBar) Name() string { return s.def.Name }

func (s *BuyOnFirstBar) Version() int { return s.def.Version }

func (s *BuyOnFirstBar) MainTimeframe() domain.Timeframe { return s.def.MainTimeframe }

func (s *BuyOnFirstBar) RequiredTimeframes() map[domain.Timeframe]int {
	return s.def.RequiredTimeframes
}

func (s *BuyOnFirstBar) Evaluate(ctx domain.SignalContext) domain.SignalResult {
	if s.hasFired {
		return domain.SignalResult{Signal: domain.SignalNone}
	}
	bars, ok := ctx.MarketData[s.MainTimeframe()]
	if !ok || len(bars) == 0 {
		return domain.SignalResult{Signal: domain.SignalNone}
	}
	s.hasFired = true
	return domain.SignalResult{
		Signal: domain.SignalBuy,
		Reason: "first bar observed",
	}
}

// Reset clears the fired flag, re-arming the strategy for another run.
func (s *BuyOnFirstBar) Reset() {
	s.hasFired = false
}

// HasFired reports whether the strategy has already emitted its one signal.
func (s *BuyOnFirstBar) HasFired() bool {
	return s.hasFired
}
