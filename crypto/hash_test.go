package crypto

import (
	"testing"
)

func Test_fingerprint(t *testing.T) {
	a := Fingerprint(4, 5, 8)
	if a != Fingerprint(4, 5, 8) {
		t.Fatalf("not deterministic")
	}
	if a == Fingerprint(5, 5, 8) {
		t.Fatalf("secret ignored")
	}
	if a == Fingerprint(4, 8, 5) {
		t.Fatalf("transcript order ignored")
	}
	if Fingerprint(4) == Fingerprint(5) {
		t.Fatalf("empty transcript collides")
	}
}

func Benchmark_fingerprint(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Fingerprint(uint64(i), 5, 8)
	}
}
