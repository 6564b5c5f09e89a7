package domain

// PipTable resolves a symbol's pip size — the price increment one "pip"
// represents for that instrument.
// suggested_stop_loss_pips/suggested_take_profit_pips are pip offsets, and
// the engine converts them to price levels using this table and the
// reference price at signal time.
type PipTable struct {
	defaultPipSize float64
	overrides      map[SymbolID]float64
}

// NewPipTable returns a table with the given default pip size (0.0001 is
// standard for most FX pairs quoted to four decimal places) and no
// per-symbol overrides.
func NewPipTable(defaultPipSize float64) *PipTable {
	if defaultPipSize <= 0 {
		defaultPipSize = 0.0001
	}
	return &PipTable{defaultPipSize: defaultPipSize, overrides: make(map[SymbolID]float64)}
}

// SetPipSize overrides the pip size for a specific symbol (e.g. JPY pairs,
// quoted to two decimal places, use 0.01).
func (t *PipTable) SetPipSize(symbol SymbolID, pipSize float64) {
	t.overrides[symbol] = pipSize
}

// PipSize returns the pip size for symbol, falling back to the table's
// default when no override is set.
func (t *PipTable) PipSize(symbol SymbolID) float64 {
	if size, ok := t.overrides[symbol]; ok {
		return size
	}
	return t.defaultPipSize
}
