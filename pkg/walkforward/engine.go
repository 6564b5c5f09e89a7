// Package walkforward implements rolling out-of-sample (OOS) validation to
// guard against strategy overfitting.
//
// A walk-forward run splits a historical date range into overlapping
// windows. Each window has an in-sample (IS) period used as a calibration
// reference and an out-of-sample (OOS) period that is backtested
// independently. The key output is the WF Efficiency Ratio (WFER):
//
//	WFER = mean(OOS annualised return) / IS annualised return
//
// A WFER above 0.5 is generally considered sufficient for a strategy to be
// deployable; a negative WFER means the OOS windows lost money on average.
package walkforward

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/barforge/engine/pkg/backtest"
	"github.com/barforge/engine/pkg/domain"

	"golang.org/x/sync/errgroup"
)

// Config defines a single walk-forward validation run.
type Config struct {
	StrategyName    string
	StrategyVersion int
	Symbols         []domain.SymbolID
	FullStart       time.Time
	FullEnd         time.Time
	// ISPeriod is the length of each in-sample window; defaults to 252 days.
	ISPeriod time.Duration
	// OOSPeriod is the length of each out-of-sample window; defaults to 63 days.
	OOSPeriod time.Duration
}

// Window describes one IS/OOS pair.
type Window struct {
	Index    int
	ISStart  time.Time
	ISEnd    time.Time
	OOSStart time.Time
	OOSEnd   time.Time
}

// WindowResult holds the OOS outcome for one walk-forward window.
type WindowResult struct {
	Window
	TotalTrades   int
	WinRate       float64
	TotalReturn   float64
	AnnualisedRet float64
	MaxDrawdown   float64
	FinalBalance  float64
}

// Result is the aggregate output of a walk-forward validation run.
type Result struct {
	Config Config

	// Windows holds per-window OOS results in chronological order.
	Windows []WindowResult

	// ISResult is the reference run over the full IS range.
	ISResult backtest.Result

	MeanOOSReturn  float64
	WFER           float64
	PassRate       float64
	TotalOOSTrades int
	StabilityScore float64
}

// Engine orchestrates walk-forward validation on top of a backtest
// orchestrator, reusing it unchanged for both the IS reference run and every
// OOS window.
type Engine struct {
	bt *backtest.Orchestrator
}

// New constructs a walk-forward Engine over bt.
func New(bt *backtest.Orchestrator) *Engine {
	return &Engine{bt: bt}
}

// Run executes a full walk-forward validation.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.ISPeriod == 0 {
		cfg.ISPeriod = 252 * 24 * time.Hour
	}
	if cfg.OOSPeriod == 0 {
		cfg.OOSPeriod = 63 * 24 * time.Hour
	}

	windows := buildWindows(cfg.FullStart, cfg.FullEnd, cfg.ISPeriod, cfg.OOSPeriod)
	if len(windows) == 0 {
		return nil, fmt.Errorf("walkforward: date range too short to form a single IS+OOS window (need >=%v)",
			cfg.ISPeriod+cfg.OOSPeriod)
	}

	log.Printf("walkforward: starting strategy=%q windows=%d IS=%v OOS=%v range=%s..%s",
		cfg.StrategyName, len(windows), cfg.ISPeriod, cfg.OOSPeriod,
		cfg.FullStart.Format("2006-01-02"), cfg.FullEnd.Format("2006-01-02"))

	isEnd := windows[len(windows)-1].ISEnd
	isRef := e.bt.Run(ctx, backtest.Job{
		JobID:           "wf-is-reference",
		StrategyName:    cfg.StrategyName,
		StrategyVersion: cfg.StrategyVersion,
		Symbols:         cfg.Symbols,
		StartDate:       cfg.FullStart,
		EndDate:         isEnd,
	})
	if !isRef.Success {
		return nil, fmt.Errorf("walkforward: IS reference run: %s", isRef.Error)
	}
	isAnnualised := annualise(isRef.FinalBalance/isRef.InitialBalance-1, cfg.FullStart, isEnd)

	// Each window is an independently isolated orchestrator run, so the OOS
	// sweep fans out across an errgroup instead of running strictly
	// sequentially.
	perWindow := make([]*WindowResult, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		i, w := i, w
		g.Go(func() error {
			res := e.bt.Run(gctx, backtest.Job{
				JobID:           fmt.Sprintf("wf-oos-%d", w.Index),
				StrategyName:    cfg.StrategyName,
				StrategyVersion: cfg.StrategyVersion,
				Symbols:         cfg.Symbols,
				StartDate:       w.OOSStart,
				EndDate:         w.OOSEnd,
			})
			if !res.Success {
				log.Printf("walkforward: window %d OOS run failed: %s (skipping)", w.Index, res.Error)
				return nil
			}

			totalReturn := res.FinalBalance - res.InitialBalance
			oosRet := res.FinalBalance/res.InitialBalance - 1
			oosAnn := annualise(oosRet, w.OOSStart, w.OOSEnd)

			perWindow[i] = &WindowResult{
				Window:        w,
				TotalTrades:   res.TotalTrades,
				WinRate:       res.WinRate,
				TotalReturn:   totalReturn,
				AnnualisedRet: oosAnn,
				MaxDrawdown:   res.MaxDrawdownPercent,
				FinalBalance:  res.FinalBalance,
			}
			log.Printf("walkforward: window %d OOS %s..%s trades=%d annualised_return=%.2f%%",
				w.Index, w.OOSStart.Format("2006-01-02"), w.OOSEnd.Format("2006-01-02"),
				res.TotalTrades, oosAnn*100)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("walkforward: %w", err)
	}

	var winResults []WindowResult
	for _, wr := range perWindow {
		if wr != nil {
			winResults = append(winResults, *wr)
		}
	}
	if len(winResults) == 0 {
		return nil, fmt.Errorf("walkforward: all OOS windows failed to produce results")
	}

	result := &Result{Config: cfg, Windows: winResults, ISResult: isRef}

	var sumRet float64
	var sumTrades int
	var positiveWindows int
	var weightedPositive, totalWeight float64
	for _, w := range winResults {
		sumRet += w.AnnualisedRet
		sumTrades += w.TotalTrades
		if w.AnnualisedRet > 0 {
			positiveWindows++
		}
		weight := math.Max(float64(w.TotalTrades), 1)
		totalWeight += weight
		if w.AnnualisedRet > 0 {
			weightedPositive += weight
		}
	}

	result.MeanOOSReturn = sumRet / float64(len(winResults))
	result.TotalOOSTrades = sumTrades
	result.PassRate = float64(positiveWindows) / float64(len(winResults))
	if totalWeight > 0 {
		result.StabilityScore = weightedPositive / totalWeight
	}
	if isAnnualised != 0 {
		result.WFER = result.MeanOOSReturn / isAnnualised
	}

	log.Printf("walkforward: done windows=%d wfer=%.2f pass_rate=%.0f%% stability_score=%.2f",
		len(winResults), result.WFER, result.PassRate*100, result.StabilityScore)

	return result, nil
}

// buildWindows generates IS/OOS window pairs anchored to fullStart, each
// subsequent window sliding forward by oos.
func buildWindows(fullStart, fullEnd time.Time, is, oos time.Duration) []Window {
	var windows []Window
	idx := 0
	for {
		isStart := fullStart.Add(time.Duration(idx) * oos)
		isEnd := isStart.Add(is)
		oosStart := isEnd
		oosEnd := oosStart.Add(oos)

		if oosEnd.After(fullEnd) {
			break
		}

		windows = append(windows, Window{
			Index: idx, ISStart: isStart, ISEnd: isEnd, OOSStart: oosStart, OOSEnd: oosEnd,
		})
		idx++
	}
	return windows
}

// annualise converts a fractional return over a date span to a compound
// annual growth rate, treating every 252 days of the span as one year. The
// span is counted in calendar days; weekends and holidays are not excluded.
func annualise(ret float64, start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	if days <= 0 {
		return 0
	}
	tradingYears := days / 252
	if tradingYears <= 0 {
		return 0
	}
	return math.Pow(1+ret, 1/tradingYears) - 1
}

// WFERVerdict returns a human-readable summary of walk-forward quality.
func WFERVerdict(r *Result) string {
	switch {
	case r.WFER >= 0.7:
		return "EXCELLENT - strategy transfers to out-of-sample data well"
	case r.WFER >= 0.5:
		return "GOOD - strategy is deployable"
	case r.WFER >= 0.0:
		return "MARGINAL - live performance likely to underperform in-sample"
	default:
		return "FAIL - strategy loses money out-of-sample; do not deploy"
	}
}
