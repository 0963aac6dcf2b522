package modp

import (
	"github.com/Lafeng/dhdemo/exception"
)

var (
	ErrDiscreteLogNotFound = exception.New("No exponent reproduces the residue")
	ErrInvalidModulus      = exception.New("Invalid modulus")
)

// DiscreteLog searches exponents 1..q-1 in increasing order and returns the
// first i with alpha^i mod q == y. The search is exhaustive on purpose: one
// Exp per candidate, no baby-step/giant-step, no index.
//
// If alpha is not a primitive root several exponents may map to y; only the
// smallest is ever returned. A zero y, q <= 1 or an exhausted range yields
// ErrDiscreteLogNotFound.
func DiscreteLog(alpha, y, q uint64) (uint64, error) {
	if y == 0 || q <= 1 {
		return 0, ErrDiscreteLogNotFound.Apply(y)
	}
	for i := uint64(1); i < q; i++ {
		if Exp(alpha, i, q) == y {
			return i, nil
		}
	}
	return 0, ErrDiscreteLogNotFound.Apply(y)
}
