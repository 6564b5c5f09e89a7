package execution

import "errors"

// ErrNotPending is returned by ModifyOrder when order_id does not name a
// currently pending order — the simulated executor only ever mutates
// pending orders, never open positions; positions get their own
// ModifyPosition.
var ErrNotPending = errors.New("execution: order is not pending")

// ErrExternal wraps a failure from a live broker adapter.
var ErrExternal = errors.New("execution: external failure")
