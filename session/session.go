// Package session keeps the state of one interactive Diffie-Hellman
// walk-through: the group parameters, both parties' keys, the last power
// table and the explanation of the last calculation.
//
// The arithmetic itself lives in modp and is stateless; everything here is
// caller-owned view state and can always be recomputed.
package session

import (
	"github.com/Lafeng/dhdemo/exception"
	log "github.com/Lafeng/dhdemo/glog"
	"github.com/Lafeng/dhdemo/modp"
)

const DEFAULT_MAX_MODULUS = 65537

var (
	ErrNoParams          = exception.New("Alpha and prime q are required")
	ErrInvalidModulus    = exception.New("Not a valid modulus:")
	ErrNotPrime          = exception.New("Modulus is not prime:")
	ErrModulusTooLarge   = exception.New("Modulus exceeds the configured limit:")
	ErrNotChecked        = exception.New("Check the primitive root first")
	ErrNotPrimitiveRoot  = exception.New("α is not a primitive root of q")
	ErrPrivateKeyRange   = exception.New("Private key out of range:")
	ErrPublicKeyRange    = exception.New("Public key out of range:")
	ErrMissingKey        = exception.New("Missing key:")
	ErrPrivateKeyUnknown = exception.New("No private key found for public key")
)

type Party int

const (
	Alice Party = iota
	Bob
)

func (p Party) String() string {
	if p == Alice {
		return "Alice"
	}
	return "Bob"
}

type Options struct {
	// largest q the session agrees to scan; 0 means DEFAULT_MAX_MODULUS
	MaxModulus uint64
	// accept composite moduli; the verdict is then false anyway
	AllowComposite bool
	// shared table memo; nil computes every table afresh
	Cache *TableCache
}

// State is a read-only copy of a Session. Zero key values mean "unset".
type State struct {
	Alpha, Prime       uint64
	PrivateA, PrivateB uint64
	PublicA, PublicB   uint64
	Secret             uint64
	Table              modp.PowerTable
	Checked            bool
	PrimitiveRoot      bool
	Steps              []string
}

// Session is not safe for concurrent use.
type Session struct {
	opts  Options
	state State
}

func New(opts Options) *Session {
	if opts.MaxModulus == 0 {
		opts.MaxModulus = DEFAULT_MAX_MODULUS
	}
	return &Session{opts: opts}
}

// SetParams sets alpha and q. A change of either value discards every
// derived value: public keys, secret, table, verdict and steps.
// Private keys are user input and survive.
func (s *Session) SetParams(alpha, q uint64) {
	st := &s.state
	if st.Alpha == alpha && st.Prime == q {
		return
	}
	st.Alpha, st.Prime = alpha, q
	s.reset()
}

func (s *Session) reset() {
	st := &s.state
	st.PublicA, st.PublicB = 0, 0
	st.Secret = 0
	st.Table = nil
	st.Checked = false
	st.PrimitiveRoot = false
	st.Steps = nil
	if log.V(log.LV_SESSION) {
		log.Infof("session reset alpha=%d q=%d", st.Alpha, st.Prime)
	}
}

func (s *Session) SetPrivateKeys(xa, xb uint64) {
	s.state.PrivateA, s.state.PrivateB = xa, xb
}

func (s *Session) SetPublicKeys(ya, yb uint64) {
	s.state.PublicA, s.state.PublicB = ya, yb
}

// validate q against the caller-imposed bounds before any O(q) work
func (s *Session) validateModulus() error {
	st := &s.state
	if st.Alpha == 0 || st.Prime == 0 {
		return ErrNoParams
	}
	if st.Prime <= 1 {
		return ErrInvalidModulus.Apply(st.Prime)
	}
	if st.Prime > s.opts.MaxModulus {
		return ErrModulusTooLarge.Apply(s.opts.MaxModulus)
	}
	if !s.opts.AllowComposite && !modp.IsProbablePrime(st.Prime) {
		return ErrNotPrime.Apply(st.Prime)
	}
	return nil
}

// CheckPrimitiveRoot builds the power table of alpha and records the
// verdict. With q <= 1 the verdict is false, the table empty and
// ErrInvalidModulus is returned.
func (s *Session) CheckPrimitiveRoot() (modp.PowerTable, bool, error) {
	st := &s.state
	if err := s.validateModulus(); err != nil {
		st.Checked = false
		st.PrimitiveRoot = false
		st.Table = nil
		return nil, false, err
	}
	var (
		table   modp.PowerTable
		verdict bool
	)
	if s.opts.Cache != nil {
		table, verdict = s.opts.Cache.Build(st.Alpha, st.Prime)
	} else {
		table, verdict = modp.BuildPowerTable(st.Alpha, st.Prime)
	}
	st.Table = table
	st.Checked = true
	st.PrimitiveRoot = verdict
	st.Steps = []string{tableSteps(st.Alpha, st.Prime, table, verdict)}
	if log.V(log.LV_TABLE) {
		log.Infof("table alpha=%d q=%d rows=%d verdict=%v", st.Alpha, st.Prime, len(table), verdict)
	}
	return table, verdict, nil
}

// every key operation is gated on a positive verdict
func (s *Session) requireRoot() error {
	if !s.state.Checked {
		return ErrNotChecked
	}
	if !s.state.PrimitiveRoot {
		return ErrNotPrimitiveRoot
	}
	return nil
}

func (s *Session) checkPrivate(name string, x uint64) error {
	if x == 0 {
		return ErrMissingKey.Apply(name)
	}
	if x > s.state.Prime-2 {
		return ErrPrivateKeyRange.Apply(name)
	}
	return nil
}

func (s *Session) checkPublic(name string, y uint64) error {
	if y == 0 {
		return ErrMissingKey.Apply(name)
	}
	if y >= s.state.Prime {
		return ErrPublicKeyRange.Apply(name)
	}
	return nil
}

// CalculatePublicKeys derives YA and YB from XA and XB.
func (s *Session) CalculatePublicKeys() (ya, yb uint64, err error) {
	st := &s.state
	if err = s.requireRoot(); err != nil {
		return
	}
	if err = s.checkPrivate("XA", st.PrivateA); err != nil {
		return
	}
	if err = s.checkPrivate("XB", st.PrivateB); err != nil {
		return
	}
	if ya, err = modp.PublicKey(st.Alpha, st.PrivateA, st.Prime); err != nil {
		return
	}
	if yb, err = modp.PublicKey(st.Alpha, st.PrivateB, st.Prime); err != nil {
		return
	}
	st.PublicA, st.PublicB = ya, yb
	st.Steps = []string{publicKeySteps(st.Alpha, st.Prime, st.PrivateA, st.PrivateB, ya, yb)}
	return ya, yb, nil
}

// CalculateSecretKey computes K from Alice's side when XA and YB are known,
// otherwise from Bob's side with XB and YA.
func (s *Session) CalculateSecretKey() (uint64, error) {
	st := &s.state
	if err := s.requireRoot(); err != nil {
		return 0, err
	}
	var (
		party      Party
		priv, peer uint64
	)
	switch {
	case st.PrivateA != 0 && st.PublicB != 0:
		party, priv, peer = Alice, st.PrivateA, st.PublicB
	case st.PrivateB != 0 && st.PublicA != 0:
		party, priv, peer = Bob, st.PrivateB, st.PublicA
	default:
		return 0, ErrMissingKey.Apply("XA with YB, or XB with YA")
	}
	if err := s.checkPrivate("X"+party.String()[:1], priv); err != nil {
		return 0, err
	}
	if err := s.checkPublic("peer Y", peer); err != nil {
		return 0, err
	}
	k, err := modp.SharedSecret(peer, priv, st.Prime)
	if err != nil {
		return 0, err
	}
	st.Secret = k
	st.Steps = []string{secretSteps(party, st.Prime, priv, peer, k)}
	return k, nil
}

// RecoverPrivateKey brute-forces the private key of party from its public
// key and stores it as that party's private key.
func (s *Session) RecoverPrivateKey(party Party) (uint64, error) {
	st := &s.state
	if err := s.requireRoot(); err != nil {
		return 0, err
	}
	y := st.PublicA
	if party == Bob {
		y = st.PublicB
	}
	if err := s.checkPublic("Y"+party.String()[:1], y); err != nil {
		return 0, err
	}
	x, err := modp.RecoverPrivateKey(st.Alpha, y, st.Prime)
	if err != nil {
		st.Steps = []string{notFoundSteps(y)}
		return 0, ErrPrivateKeyUnknown.Apply(y)
	}
	if party == Alice {
		st.PrivateA = x
	} else {
		st.PrivateB = x
	}
	st.Steps = []string{recoverSteps(st.Alpha, st.Prime, y, x)}
	if log.V(log.LV_SESSION) {
		log.Infof("recovered %s private key %d from %d", party, x, y)
	}
	return x, nil
}

func (s *Session) Steps() []string {
	return append([]string(nil), s.state.Steps...)
}

// Snapshot copies the state for display. The table is shared, not copied.
func (s *Session) Snapshot() State {
	st := s.state
	st.Steps = s.Steps()
	return st
}
