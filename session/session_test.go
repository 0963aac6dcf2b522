package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/Lafeng/dhdemo/modp"
)

func newChecked(t *testing.T, alpha, q uint64) *Session {
	s := New(Options{})
	s.SetParams(alpha, q)
	if _, verdict, err := s.CheckPrimitiveRoot(); err != nil || !verdict {
		t.Fatalf("alpha=%d q=%d verdict=%v err=%v", alpha, q, verdict, err)
	}
	return s
}

func Test_walk_q11(t *testing.T) {
	s := newChecked(t, 2, 11)
	s.SetPrivateKeys(4, 3)
	ya, yb, err := s.CalculatePublicKeys()
	if err != nil || ya != 5 || yb != 8 {
		t.Fatalf("ya=%d yb=%d err=%v", ya, yb, err)
	}
	if steps := s.Steps(); len(steps) != 1 || !strings.Contains(steps[0], "2^4 mod 11 = 5") {
		t.Fatalf("steps=%q", steps)
	}
	k, err := s.CalculateSecretKey()
	if err != nil || k != 4 {
		t.Fatalf("k=%d err=%v", k, err)
	}
	if !strings.Contains(s.Steps()[0], "Alice uses Bob's public key YB = 8") {
		t.Fatalf("steps=%q", s.Steps())
	}
}

func Test_secret_from_bob_side(t *testing.T) {
	s := newChecked(t, 2, 11)
	s.SetPrivateKeys(0, 3)
	s.SetPublicKeys(5, 0)
	k, err := s.CalculateSecretKey()
	if err != nil || k != 4 {
		t.Fatalf("k=%d err=%v", k, err)
	}
	if !strings.Contains(s.Steps()[0], "Bob uses Alice's public key YA = 5") {
		t.Fatalf("steps=%q", s.Steps())
	}
}

func Test_secret_missing_keys(t *testing.T) {
	s := newChecked(t, 2, 11)
	s.SetPrivateKeys(4, 0)
	if _, err := s.CalculateSecretKey(); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err=%v", err)
	}
}

func Test_recover_private_key(t *testing.T) {
	s := newChecked(t, 2, 11)
	s.SetPublicKeys(5, 8)
	xa, err := s.RecoverPrivateKey(Alice)
	if err != nil || xa != 4 {
		t.Fatalf("xa=%d err=%v", xa, err)
	}
	xb, err := s.RecoverPrivateKey(Bob)
	if err != nil || xb != 3 {
		t.Fatalf("xb=%d err=%v", xb, err)
	}
	st := s.Snapshot()
	if st.PrivateA != 4 || st.PrivateB != 3 {
		t.Fatalf("state=%+v", st)
	}
	if !strings.Contains(st.Steps[0], "Found X = 3") {
		t.Fatalf("steps=%q", st.Steps)
	}
}

func Test_gated_on_primitive_root(t *testing.T) {
	s := New(Options{})
	s.SetParams(3, 11)
	s.SetPrivateKeys(4, 3)
	if _, _, err := s.CalculatePublicKeys(); !errors.Is(err, ErrNotChecked) {
		t.Fatalf("unchecked err=%v", err)
	}
	table, verdict, err := s.CheckPrimitiveRoot()
	if err != nil || verdict || len(table) != 10 {
		t.Fatalf("verdict=%v len=%d err=%v", verdict, len(table), err)
	}
	if _, _, err := s.CalculatePublicKeys(); !errors.Is(err, ErrNotPrimitiveRoot) {
		t.Fatalf("err=%v", err)
	}
	s.SetPublicKeys(5, 0)
	if _, err := s.CalculateSecretKey(); !errors.Is(err, ErrNotPrimitiveRoot) {
		t.Fatalf("err=%v", err)
	}
	if _, err := s.RecoverPrivateKey(Alice); !errors.Is(err, ErrNotPrimitiveRoot) {
		t.Fatalf("err=%v", err)
	}
}

func Test_params_change_resets_derived(t *testing.T) {
	s := newChecked(t, 2, 11)
	s.SetPrivateKeys(4, 3)
	s.CalculatePublicKeys()
	s.CalculateSecretKey()

	// same values keep everything
	s.SetParams(2, 11)
	if st := s.Snapshot(); st.Secret != 4 || !st.Checked {
		t.Fatalf("state=%+v", st)
	}

	s.SetParams(2, 13)
	st := s.Snapshot()
	if st.PublicA != 0 || st.PublicB != 0 || st.Secret != 0 || st.Table != nil ||
		st.Checked || st.PrimitiveRoot || len(st.Steps) != 0 {
		t.Fatalf("derived values survived: %+v", st)
	}
	if st.PrivateA != 4 || st.PrivateB != 3 {
		t.Fatalf("private keys lost: %+v", st)
	}
	if _, _, err := s.CalculatePublicKeys(); !errors.Is(err, ErrNotChecked) {
		t.Fatalf("err=%v", err)
	}
}

func Test_modulus_validation(t *testing.T) {
	var cases = []struct {
		alpha, q uint64
		err      error
	}{
		{0, 11, ErrNoParams},
		{2, 0, ErrNoParams},
		{2, 1, ErrInvalidModulus},
		{2, 15, ErrNotPrime},
		{2, 1000003, ErrModulusTooLarge},
	}
	for _, c := range cases {
		s := New(Options{})
		s.SetParams(c.alpha, c.q)
		table, verdict, err := s.CheckPrimitiveRoot()
		if !errors.Is(err, c.err) || verdict || len(table) != 0 {
			t.Fatalf("alpha=%d q=%d: verdict=%v len=%d err=%v", c.alpha, c.q, verdict, len(table), err)
		}
	}
	s := New(Options{AllowComposite: true})
	s.SetParams(2, 15)
	if _, verdict, err := s.CheckPrimitiveRoot(); err != nil || verdict {
		t.Fatalf("composite: verdict=%v err=%v", verdict, err)
	}
}

func Test_private_key_range(t *testing.T) {
	s := newChecked(t, 2, 11)
	s.SetPrivateKeys(10, 3) // q-1 is excluded by convention
	if _, _, err := s.CalculatePublicKeys(); !errors.Is(err, ErrPrivateKeyRange) {
		t.Fatalf("err=%v", err)
	}
	s.SetPrivateKeys(9, 1)
	if _, _, err := s.CalculatePublicKeys(); err != nil {
		t.Fatalf("err=%v", err)
	}
}

func Test_recover_not_found(t *testing.T) {
	s := newChecked(t, 2, 11)
	s.SetPublicKeys(11, 0)
	if _, err := s.RecoverPrivateKey(Alice); !errors.Is(err, ErrPublicKeyRange) {
		t.Fatalf("err=%v", err)
	}
	if _, err := s.RecoverPrivateKey(Bob); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err=%v", err)
	}
}

func Test_table_cache(t *testing.T) {
	cache := NewTableCache(2)
	a := New(Options{Cache: cache})
	b := New(Options{Cache: cache})
	a.SetParams(2, 11)
	b.SetParams(13, 11) // same residue class as 2
	t1, _, _ := a.CheckPrimitiveRoot()
	t2, _, _ := b.CheckPrimitiveRoot()
	if &t1[0] != &t2[0] {
		t.Fatalf("second session rebuilt the table")
	}
	if cache.Len() != 1 || !strings.Contains(cache.Stats(), "hits=1 misses=1") {
		t.Fatal(cache.Stats())
	}
	want, _ := modp.BuildPowerTable(2, 11)
	for i := range want {
		if want[i] != t1[i] {
			t.Fatalf("row %d: %+v != %+v", i, t1[i], want[i])
		}
	}
	cache.Build(2, 13)
	cache.Build(2, 17)
	if cache.Len() != 2 {
		t.Fatalf("capacity not honoured: %s", cache.Stats())
	}
}

func Test_algorithm_text(t *testing.T) {
	text := AlgorithmText()
	for _, s := range []string{"K = YB^XA mod q", "K = YA^XB mod q", "discrete"} {
		if !strings.Contains(text, s) {
			t.Fatalf("missing %q", s)
		}
	}
}
