package domain

import "errors"

// ErrInvalidArgument covers non-positive pips, percentages, lots, and
// other structurally invalid inputs surfaced across the domain and
// strategies packages.
var ErrInvalidArgument = errors.New("domain: invalid argument")
