package modp

import (
	"math/big"
	"testing"
)

// reference result through math/big
func bigExp(b, e, m uint64) uint64 {
	r := new(big.Int).Exp(new(big.Int).SetUint64(b), new(big.Int).SetUint64(e), new(big.Int).SetUint64(m))
	return r.Uint64()
}

func Test_exp_zero_exponent(t *testing.T) {
	for _, q := range []uint64{2, 3, 11, 65537, 1<<61 - 1} {
		for _, b := range []uint64{0, 1, 2, q - 1, q, q + 5} {
			if r := Exp(b, 0, q); r != 1 {
				t.Fatalf("Exp(%d,0,%d)=%d", b, q, r)
			}
		}
	}
	if r := Exp(7, 0, 1); r != 0 {
		t.Fatalf("Exp(7,0,1)=%d", r)
	}
}

func Test_exp_degenerate_modulus(t *testing.T) {
	if r := Exp(5, 3, 1); r != 0 {
		t.Fatalf("mod 1 gives %d", r)
	}
	if r := Exp(5, 3, 0); r != 0 {
		t.Fatalf("mod 0 gives %d", r)
	}
}

func Test_exp_small(t *testing.T) {
	for m := uint64(1); m < 40; m++ {
		for b := uint64(0); b < 2*m; b++ {
			var naive uint64 = 1 % m
			for e := uint64(0); e < 30; e++ {
				if r := Exp(b, e, m); r != naive {
					t.Fatalf("Exp(%d,%d,%d)=%d want %d", b, e, m, r, naive)
				}
				naive = naive * (b % m) % m
			}
		}
	}
}

func Test_exp_wide_modulus(t *testing.T) {
	// products of residues here overflow 64 bits
	var mods = []uint64{
		1<<61 - 1,
		18446744073709551557, // largest prime below 2^64
		1<<63 + 25,
	}
	var cases = [][2]uint64{
		{2, 1<<61 - 2},
		{3, 12345678901234567},
		{1<<62 + 3, 1<<63 - 1},
		{18446744073709551556, 18446744073709551556},
	}
	for _, m := range mods {
		for _, c := range cases {
			if r, w := Exp(c[0], c[1], m), bigExp(c[0], c[1], m); r != w {
				t.Fatalf("Exp(%d,%d,%d)=%d want %d", c[0], c[1], m, r, w)
			}
		}
	}
}

func Test_is_probable_prime(t *testing.T) {
	var primes = []uint64{2, 3, 11, 23, 65537, 1<<61 - 1, 18446744073709551557}
	var others = []uint64{0, 1, 4, 9, 561, 65535, 1<<61 + 1}
	for _, p := range primes {
		if !IsProbablePrime(p) {
			t.Fatalf("%d reported composite", p)
		}
	}
	for _, n := range others {
		if IsProbablePrime(n) {
			t.Fatalf("%d reported prime", n)
		}
	}
}

func Benchmark_exp_64bit(b *testing.B) {
	var m uint64 = 18446744073709551557
	for i := 0; i < b.N; i++ {
		Exp(5, m-2, m)
	}
}
