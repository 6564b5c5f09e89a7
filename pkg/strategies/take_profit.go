package strategies

import (
	"fmt"

	"github.com/barforge/engine/pkg/domain"
)

// FixedPipsTakeProfit always returns the same pip distance.
type FixedPipsTakeProfit struct {
	pips float64
}

// NewFixedPipsTakeProfit requires pips > 0.
func NewFixedPipsTakeProfit(pips float64) (*FixedPipsTakeProfit, error) {
	if pips <= 0 {
		return nil, fmt.Errorf("%w: fixed take-profit pips must be > 0, got %v", domain.ErrInvalidArgument, pips)
	}
	return &FixedPipsTakeProfit{pips: pips}, nil
}

func (p *FixedPipsTakeProfit) CalculateTakeProfitPips(domain.SignalContext, float64) (float64, error) {
	return p.pips, nil
}

// RiskRewardTakeProfit scales the chosen stop-loss distance by a fixed
// reward multiple.
type RiskRewardTakeProfit struct {
	ratio float64
}

// NewRiskRewardTakeProfit requires ratio > 0.
func NewRiskRewardTakeProfit(ratio float64) (*RiskRewardTakeProfit, error) {
	if ratio <= 0 {
		return nil, fmt.Errorf("%w: risk-reward ratio must be > 0, got %v", domain.ErrInvalidArgument, ratio)
	}
	return &RiskRewardTakeProfit{ratio: ratio}, nil
}

func (p *RiskRewardTakeProfit) CalculateTakeProfitPips(_ domain.SignalContext, stopLossPips float64) (float64, error) {
	if stopLossPips <= 0 {
		return 0, fmt.Errorf("%w: risk-reward take-profit requires a positive stop-loss distance, got %v", domain.ErrInvalidArgument, stopLossPips)
	}
	return stopLossPips * p.ratio, nil
}
