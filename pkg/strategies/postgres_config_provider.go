package strategies

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barforge/engine/pkg/domain"
)

// configJSON mirrors the nested "config" column on strategy_instances:
// timeframe requirements, free-form parameters, and the three risk blocks.
type configJSON struct {
	Timeframes map[string]int `json:"Timeframes"`
	Parameters map[string]any `json:"Parameters"`
	Risk       struct {
		StopLoss       riskBlockJSON `json:"StopLoss"`
		TakeProfit     riskBlockJSON `json:"TakeProfit"`
		PositionSizing riskBlockJSON `json:"PositionSizing"`
	} `json:"Risk"`
}

type riskBlockJSON struct {
	Type       string         `json:"Type"`
	Parameters map[string]any `json:"Parameters"`
}

// PostgresConfigProvider reads strategy definitions from the
// strategy_instances table via a pgx connection pool.
type PostgresConfigProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresConfigProvider wraps an already-established pool. The pool's
// lifecycle (close, reconnect) is the caller's responsibility — this type
// only borrows it for query duration.
func NewPostgresConfigProvider(pool *pgxpool.Pool) *PostgresConfigProvider {
	return &PostgresConfigProvider{pool: pool}
}

const selectDefinitionColumns = `
	id, name, version, enabled, main_timeframe, config, symbol_list, created_at
`

func (p *PostgresConfigProvider) LoadAll() ([]domain.StrategyDefinition, error) {
	ctx := context.Background()
	rows, err := p.pool.Query(ctx, `
		SELECT `+selectDefinitionColumns+`
		FROM strategy_instances
		WHERE enabled = true
		ORDER BY name, version DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("strategies: load all definitions: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var defs []domain.StrategyDefinition
	for rows.Next() {
		def, err := scanDefinitionRow(rows)
		if err != nil {
			return nil, err
		}
		// ORDER BY version DESC means the first row per name is the latest.
		if seen[def.Name] {
			continue
		}
		seen[def.Name] = true
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (p *PostgresConfigProvider) LoadByName(name string) (*domain.StrategyDefinition, error) {
	ctx := context.Background()
	row := p.pool.QueryRow(ctx, `
		SELECT `+selectDefinitionColumns+`
		FROM strategy_instances
		WHERE name = $1
		ORDER BY version DESC
		LIMIT 1
	`, name)

	def, err := scanDefinitionRow(row)
	if err != nil {
		return nil, fmt.Errorf("strategies: load definition %q: %w", name, err)
	}
	return &def, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinitionRow(row rowScanner) (domain.StrategyDefinition, error) {
	var (
		id            string
		name          string
		version       int
		enabled       bool
		mainTimeframe string
		rawConfig     []byte
		symbolList    []string
		createdAtUnix int64
	)
	if err := row.Scan(&id, &name, &version, &enabled, &mainTimeframe, &rawConfig, &symbolList, &createdAtUnix); err != nil {
		return domain.StrategyDefinition{}, err
	}

	var cfg configJSON
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return domain.StrategyDefinition{}, fmt.Errorf("decode config for %q: %w", name, err)
		}
	}

	tf, err := domain.ParseTimeframe(mainTimeframe)
	if err != nil {
		return domain.StrategyDefinition{}, fmt.Errorf("definition %q: %w", name, err)
	}

	required := make(map[domain.Timeframe]int, len(cfg.Timeframes))
	for code, count := range cfg.Timeframes {
		parsed, err := domain.ParseTimeframe(code)
		if err != nil {
			return domain.StrategyDefinition{}, fmt.Errorf("definition %q: %w", name, err)
		}
		required[parsed] = count
	}

	symbols := make([]domain.SymbolID, 0, len(symbolList))
	for _, s := range symbolList {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return domain.StrategyDefinition{}, fmt.Errorf("definition %q: invalid symbol id %q: %w", name, s, err)
		}
		symbols = append(symbols, domain.SymbolID(id))
	}

	return domain.StrategyDefinition{
		Name:               name,
		Version:            version,
		MainTimeframe:      tf,
		RequiredTimeframes: required,
		Parameters:         cfg.Parameters,
		Risk: domain.RiskConfig{
			StopLoss:       domain.RiskBlock{TypeTag: cfg.Risk.StopLoss.Type, Parameters: cfg.Risk.StopLoss.Parameters},
			TakeProfit:     domain.RiskBlock{TypeTag: cfg.Risk.TakeProfit.Type, Parameters: cfg.Risk.TakeProfit.Parameters},
			PositionSizing: domain.RiskBlock{TypeTag: cfg.Risk.PositionSizing.Type, Parameters: cfg.Risk.PositionSizing.Parameters},
		},
		Symbols: symbols,
		Enabled: enabled,
	}, nil
}
