package strategies

import (
	"fmt"

	"github.com/barforge/engine/pkg/domain"
)

// FixedPipsStopLoss always returns the same pip distance.
type FixedPipsStopLoss struct {
	pips float64
}

// NewFixedPipsStopLoss requires pips > 0.
func NewFixedPipsStopLoss(pips float64) (*FixedPipsStopLoss, error) {
	if pips <= 0 {
		return nil, fmt.Errorf("%w: fixed stop-loss pips must be > 0, got %v", domain.ErrInvalidArgument, pips)
	}
	return &FixedPipsStopLoss{pips: pips}, nil
}

func (p *FixedPipsStopLoss) CalculateStopLossPips(domain.SignalContext) (float64, error) {
	return p.pips, nil
}
