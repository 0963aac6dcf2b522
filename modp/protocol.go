package modp

// The calls a front-end makes for one exchange.
// Range checks on private exponents are left to the caller.

// PublicKey returns Y = alpha^x mod q.
func PublicKey(alpha, x, q uint64) (uint64, error) {
	if q <= 1 {
		return 0, ErrInvalidModulus.Apply(q)
	}
	return Exp(alpha, x, q), nil
}

// SharedSecret returns K = peer^x mod q, where peer is the other party's
// public key and x our private exponent.
func SharedSecret(peer, x, q uint64) (uint64, error) {
	if q <= 1 {
		return 0, ErrInvalidModulus.Apply(q)
	}
	return Exp(peer, x, q), nil
}

// RecoverPrivateKey brute-forces x from a public key y.
func RecoverPrivateKey(alpha, y, q uint64) (uint64, error) {
	return DiscreteLog(alpha, y, q)
}
