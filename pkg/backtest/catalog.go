// Package backtest implements the orchestrator that drives the engine and
// simulated executor deterministically over a historical bar range and
// reduces the result into standard trading metrics.
package backtest

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/barforge/engine/pkg/domain"
)

// HistoricalCandleCatalog is the external historical-bar store the
// orchestrator borrows bars from. Its persistence backend is out of scope;
// only this contract is part of the core.
type HistoricalCandleCatalog interface {
	GetHistory(ctx context.Context, symbol domain.SymbolID, tf domain.Timeframe, from, to time.Time) ([]domain.Bar, error)
}

// CSVCandleCatalog adapts a directory of per-symbol OHLCV CSV files into a
// HistoricalCandleCatalog, verifying each file's content hash against the
// hash recorded at registration time so a backtest's inputs cannot silently
// drift between runs.
type CSVCandleCatalog struct {
	files map[domain.SymbolID]registeredFile
}

type registeredFile struct {
	path string
	hash string
}

// NewCSVCandleCatalog returns an empty catalog; register files with
// RegisterFile before querying it.
func NewCSVCandleCatalog() *CSVCandleCatalog {
	return &CSVCandleCatalog{files: make(map[domain.SymbolID]registeredFile)}
}

// RegisterFile hashes the CSV at path and associates it with symbol.
// Expected header (case-insensitive): date,open,high,low,close,volume.
func (c *CSVCandleCatalog) RegisterFile(symbol domain.SymbolID, path string) error {
	hash, err := hashFile(path)
	if err != nil {
		return fmt.Errorf("backtest: register candle file %q: %w", path, err)
	}
	c.files[symbol] = registeredFile{path: path, hash: hash}
	return nil
}

// VerifyHash re-hashes the registered file and fails if its content has
// drifted since RegisterFile, which would break deterministic replay.
func (c *CSVCandleCatalog) VerifyHash(symbol domain.SymbolID) error {
	rf, ok := c.files[symbol]
	if !ok {
		return fmt.Errorf("backtest: no file registered for symbol %s", symbol)
	}
	hash, err := hashFile(rf.path)
	if err != nil {
		return err
	}
	if hash != rf.hash {
		return fmt.Errorf("backtest: candle file for symbol %s changed since registration (registered=%s current=%s)", symbol, rf.hash[:12], hash[:12])
	}
	return nil
}

func (c *CSVCandleCatalog) GetHistory(ctx context.Context, symbol domain.SymbolID, tf domain.Timeframe, from, to time.Time) ([]domain.Bar, error) {
	rf, ok := c.files[symbol]
	if !ok {
		return nil, nil
	}

	bars, err := parseCSV(rf.path, symbol, tf)
	if err != nil {
		return nil, fmt.Errorf("backtest: parse candle file for symbol %s: %w", symbol, err)
	}

	var out []domain.Bar
	for _, b := range bars {
		ts := time.Unix(b.Timestamp, 0).UTC()
		if ts.Before(from) || ts.After(to) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func parseCSV(path string, symbol domain.SymbolID, tf domain.Timeframe) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := func(name string) (int, error) {
		i, ok := col[name]
		if !ok {
			return 0, fmt.Errorf("missing column %q", name)
		}
		return i, nil
	}
	dateCol, err := idx("date")
	if err != nil {
		return nil, err
	}
	openCol, err := idx("open")
	if err != nil {
		return nil, err
	}
	highCol, err := idx("high")
	if err != nil {
		return nil, err
	}
	lowCol, err := idx("low")
	if err != nil {
		return nil, err
	}
	closeCol, err := idx("close")
	if err != nil {
		return nil, err
	}
	volCol, err := idx("volume")
	if err != nil {
		return nil, err
	}

	dateFormats := []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}
	parseDate := func(s string) (time.Time, error) {
		s = strings.TrimSpace(s)
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	var bars []domain.Bar
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := parseDate(row[dateCol])
		if err != nil {
			return nil, err
		}
		o, _ := strconv.ParseFloat(row[openCol], 64)
		h, _ := strconv.ParseFloat(row[highCol], 64)
		l, _ := strconv.ParseFloat(row[lowCol], 64)
		cl, _ := strconv.ParseFloat(row[closeCol], 64)
		v, _ := strconv.ParseFloat(row[volCol], 64)
		bars = append(bars, domain.Bar{
			SymbolID:  symbol,
			Timeframe: tf,
			Timestamp: ts.Unix(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     cl,
			Volume:    v,
		})
	}
	return bars, nil
}
