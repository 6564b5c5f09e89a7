package backtest

import (
	"sync"

	"github.com/barforge/engine/pkg/domain"
)

// Ledger tracks a running account balance: the initial balance plus the
// sum of closed positions' P&L observed so far. It implements
// engine.BalanceProvider so risk-percent position sizing reflects real
// account state rather than a hard-coded constant.
type Ledger struct {
	mu      sync.Mutex
	balance domain.Money
}

// NewLedger seeds the ledger at the given initial balance.
func NewLedger(initial domain.Money) *Ledger {
	return &Ledger{balance: initial}
}

// AccountBalance returns the current running balance.
func (l *Ledger) AccountBalance() domain.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// ApplyPnL adds a closed position's realized P&L (already net of
// commission) to the running balance.
func (l *Ledger) ApplyPnL(pnl domain.Money) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	updated, err := l.balance.Add(pnl)
	if err != nil {
		return err
	}
	l.balance = updated
	return nil
}
