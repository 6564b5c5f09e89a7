package strategies

import (
	"fmt"
	"math"

	"github.com/barforge/engine/pkg/domain"
)

// FixedLotPositionSizing always returns the same lot size.
type FixedLotPositionSizing struct {
	lots float64
}

// NewFixedLotPositionSizing requires lots > 0.
func NewFixedLotPositionSizing(lots float64) (*FixedLotPositionSizing, error) {
	if lots <= 0 {
		return nil, fmt.Errorf("%w: fixed lot size must be > 0, got %v", domain.ErrInvalidArgument, lots)
	}
	return &FixedLotPositionSizing{lots: lots}, nil
}

func (p *FixedLotPositionSizing) CalculateVolume(domain.SignalContext, float64) (float64, error) {
	return p.lots, nil
}

// RiskPercentPositionSizing sizes a position so that, if the stop-loss is
// hit, the account loses pct percent of its balance: volume =
// round2(max(0.01, (balance*pct/100) / (slPips*pipValue))).
type RiskPercentPositionSizing struct {
	pct      float64
	pipValue float64
}

// NewRiskPercentPositionSizing requires 0 < pct <= 100 and pipValue > 0.
// pipValue defaults to 10 when zero.
func NewRiskPercentPositionSizing(pct, pipValue float64) (*RiskPercentPositionSizing, error) {
	if pct <= 0 || pct > 100 {
		return nil, fmt.Errorf("%w: risk percent must be in (0, 100], got %v", domain.ErrInvalidArgument, pct)
	}
	if pipValue == 0 {
		pipValue = 10
	}
	if pipValue <= 0 {
		return nil, fmt.Errorf("%w: pip value must be > 0, got %v", domain.ErrInvalidArgument, pipValue)
	}
	return &RiskPercentPositionSizing{pct: pct, pipValue: pipValue}, nil
}

func (p *RiskPercentPositionSizing) CalculateVolume(ctx domain.SignalContext, stopLossPips float64) (float64, error) {
	if stopLossPips <= 0 {
		return 0, fmt.Errorf("%w: risk-percent sizing requires a positive stop-loss distance, got %v", domain.ErrInvalidArgument, stopLossPips)
	}
	balance := ctx.AccountBalance.Float64()
	raw := (balance * p.pct / 100) / (stopLossPips * p.pipValue)
	volume := math.Max(0.01, raw)
	return round2(volume), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
