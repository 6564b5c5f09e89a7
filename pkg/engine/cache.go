package engine

import "github.com/barforge/engine/pkg/domain"

const maxBarsPerSeries = 1000

// barSeries is a FIFO-capped, strictly-increasing-by-timestamp run of bars
// for one (symbol, timeframe) pair.
type barSeries struct {
	bars []domain.Bar
}

// append adds bar if its timestamp strictly follows the last stored bar's
// timestamp; otherwise it silently drops it, which makes double-dispatch of
// the same bar safe. Returns whether the bar was appended.
func (s *barSeries) append(bar domain.Bar) bool {
	if len(s.bars) > 0 && bar.Timestamp <= s.bars[len(s.bars)-1].Timestamp {
		return false
	}
	s.bars = append(s.bars, bar)
	if len(s.bars) > maxBarsPerSeries {
		s.bars = s.bars[len(s.bars)-maxBarsPerSeries:]
	}
	return true
}

// lastN returns the last n bars in chronological order, or ok=false if
// fewer than n are held.
func (s *barSeries) lastN(n int) ([]domain.Bar, bool) {
	if len(s.bars) < n {
		return nil, false
	}
	out := make([]domain.Bar, n)
	copy(out, s.bars[len(s.bars)-n:])
	return out, true
}

// cache is the engine's rolling per-(symbol, timeframe) bar window.
type cache struct {
	series map[domain.SymbolID]map[domain.Timeframe]*barSeries
}

func newCache() *cache {
	return &cache{series: make(map[domain.SymbolID]map[domain.Timeframe]*barSeries)}
}

func (c *cache) seriesFor(symbol domain.SymbolID, tf domain.Timeframe) *barSeries {
	byTimeframe, ok := c.series[symbol]
	if !ok {
		byTimeframe = make(map[domain.Timeframe]*barSeries)
		c.series[symbol] = byTimeframe
	}
	s, ok := byTimeframe[tf]
	if !ok {
		s = &barSeries{}
		byTimeframe[tf] = s
	}
	return s
}

func (c *cache) append(bar domain.Bar) bool {
	return c.seriesFor(bar.SymbolID, bar.Timeframe).append(bar)
}

func (c *cache) lastN(symbol domain.SymbolID, tf domain.Timeframe, n int) ([]domain.Bar, bool) {
	return c.seriesFor(symbol, tf).lastN(n)
}

func (c *cache) count(symbol domain.SymbolID, tf domain.Timeframe) int {
	return len(c.seriesFor(symbol, tf).bars)
}
