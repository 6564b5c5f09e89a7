package domain

import "strconv"

// SymbolID is an opaque instrument identifier.
type SymbolID uint64

func (s SymbolID) String() string {
	return strconv.FormatUint(uint64(s), 10)
}
