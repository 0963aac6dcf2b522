// Package modp is the arithmetic behind the Diffie-Hellman demonstration:
// modular exponentiation, primitive-root tables and brute-force discrete
// logarithms over a prime modulus q.
//
// Every function is pure. Values are uint64 and products are reduced through
// 128-bit intermediates, so any modulus below 2^64 is handled exactly.
package modp

import (
	"math/big"
	"math/bits"
)

// Exp returns base^exponent mod modulus by square-and-multiply.
// Exp(b, 0, m) is 1 for m > 1 and 0 for m == 1. A zero modulus yields 0.
func Exp(base, exponent, modulus uint64) uint64 {
	if modulus == 0 {
		return 0
	}
	if exponent == 0 {
		return 1 % modulus
	}
	var result uint64 = 1 % modulus
	base %= modulus
	for exponent > 0 {
		if exponent&1 == 1 {
			result = mulMod(result, base, modulus)
		}
		exponent >>= 1
		base = mulMod(base, base, modulus)
	}
	return result
}

// a*b mod m, a and b already reduced
func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

// IsProbablePrime reports whether q is prime. For uint64 inputs
// big.Int.ProbablyPrime is exact.
func IsProbablePrime(q uint64) bool {
	return new(big.Int).SetUint64(q).ProbablyPrime(20)
}
