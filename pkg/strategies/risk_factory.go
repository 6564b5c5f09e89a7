package strategies

import "fmt"

func floatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

// NewStopLossPolicy builds a StopLossPolicy from a definition's risk block.
// Unknown type tags are an error, not a silent fallback — a mistyped
// strategy config should fail loudly at construction time.
func NewStopLossPolicy(typeTag string, params map[string]any) (StopLossPolicy, error) {
	switch typeTag {
	case "FixedPips", "":
		return NewFixedPipsStopLoss(floatParam(params, "pips", 10))
	default:
		return nil, fmt.Errorf("strategies: unknown stop-loss policy %q", typeTag)
	}
}

// NewTakeProfitPolicy builds a TakeProfitPolicy from a definition's risk block.
func NewTakeProfitPolicy(typeTag string, params map[string]any) (TakeProfitPolicy, error) {
	switch typeTag {
	case "FixedPips", "":
		return NewFixedPipsTakeProfit(floatParam(params, "pips", 20))
	case "RiskReward":
		return NewRiskRewardTakeProfit(floatParam(params, "ratio", 2))
	default:
		return nil, fmt.Errorf("strategies: unknown take-profit policy %q", typeTag)
	}
}

// NewPositionSizingPolicy builds a PositionSizingPolicy from a definition's
// risk block.
func NewPositionSizingPolicy(typeTag string, params map[string]any) (PositionSizingPolicy, error) {
	switch typeTag {
	case "FixedLot", "":
		return NewFixedLotPositionSizing(floatParam(params, "lots", 0.01))
	case "RiskPercent":
		return NewRiskPercentPositionSizing(floatParam(params, "percent", 1), floatParam(params, "pip_value", 10))
	default:
		return nil, fmt.Errorf("strategies: unknown position-sizing policy %q", typeTag)
	}
}
