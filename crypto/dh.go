package crypto

import (
	"fmt"
	"io"
	"math/big"

	"github.com/Lafeng/dhdemo/exception"
	log "github.com/Lafeng/dhdemo/glog"
	"github.com/Lafeng/dhdemo/modp"
	"github.com/monnand/dhkx"
)

var (
	INVALID_GROUP  = exception.New("Invalid DH group")
	INVALID_PUBKEY = exception.New("Invalid DH public key")
	DISAGREEMENT   = exception.New("Parties derived different secrets:")
)

type DHKE interface {
	ExportPubKey() []byte
	ComputeKey(bobPub []byte) ([]byte, error)
}

var _ DHKE = (*DHEKey)(nil)

// classical Diffie-Hellman-Merkle key exchange in the toy group (q, alpha)
type DHEKey struct {
	group *dhkx.DHGroup
	priv  *dhkx.DHKey
	pub   []byte
}

func newToyGroup(alpha, q uint64) (*dhkx.DHGroup, error) {
	if q <= 2 {
		return nil, INVALID_GROUP.Apply(q)
	}
	p := new(big.Int).SetUint64(q)
	g := new(big.Int).SetUint64(alpha % q)
	return dhkx.CreateGroup(p, g), nil
}

// GenerateDHEKey draws a private key in (0, q) from random, or from
// crypto/rand when random is nil.
func GenerateDHEKey(alpha, q uint64, random io.Reader) (k *DHEKey, err error) {
	g, err := newToyGroup(alpha, q)
	if err != nil {
		return nil, err
	}
	k = &DHEKey{group: g}
	k.priv, err = g.GeneratePrivateKey(random)
	if k.priv != nil {
		// Get the public key from the private key.
		k.pub = k.priv.Bytes()
	}
	return k, err
}

func (d *DHEKey) ExportPubKey() []byte {
	return d.pub
}

func (d *DHEKey) PublicValue() uint64 {
	return new(big.Int).SetBytes(d.pub).Uint64()
}

func (d *DHEKey) ComputeKey(pub []byte) ([]byte, error) {
	// Recover Bob's public key
	opubkey := dhkx.NewPublicKey(pub)
	// Compute the key
	k, e := d.group.ComputeKey(opubkey, d.priv)
	if e == nil {
		return k.Bytes(), nil
	}
	return nil, INVALID_PUBKEY.Apply(e)
}

func (d *DHEKey) ComputeValue(peer uint64) (uint64, error) {
	pub := new(big.Int).SetUint64(peer).Bytes()
	k, err := d.ComputeKey(pub)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(k).Uint64(), nil
}

// Interception is what a passive attacker obtains from one exchange.
type Interception struct {
	Alpha, Prime     uint64
	PublicA, PublicB uint64
	// the secret Alice and Bob agreed on
	Secret uint64
	// smallest exponent reproducing PublicA; equals Alice's key modulo
	// the order of alpha
	RecoveredA uint64
	// PublicB^RecoveredA mod q
	Stolen uint64
}

func (i *Interception) Broken() bool {
	return i.Stolen == i.Secret
}

// Eavesdrop lets two dhkx parties agree on a secret over (alpha, q), then
// recovers Alice's exponent from her public key by brute force and rebuilds
// the secret from Bob's public key. The attack succeeds for any alpha:
// alpha^x' = YA implies YB^x' = YA^XB.
func Eavesdrop(alpha, q uint64, random io.Reader) (*Interception, error) {
	if q <= 2 || !modp.IsProbablePrime(q) {
		return nil, INVALID_GROUP.Apply(q)
	}
	if !modp.IsPrimitiveRoot(alpha, q) {
		return nil, INVALID_GROUP.Apply(fmt.Sprintf("%d is not a primitive root of %d", alpha, q))
	}
	alice, err := GenerateDHEKey(alpha, q, random)
	if err != nil {
		return nil, err
	}
	bob, err := GenerateDHEKey(alpha, q, random)
	if err != nil {
		return nil, err
	}
	i := &Interception{
		Alpha:   alpha,
		Prime:   q,
		PublicA: alice.PublicValue(),
		PublicB: bob.PublicValue(),
	}
	ka, err := alice.ComputeValue(i.PublicB)
	if err != nil {
		return nil, err
	}
	kb, err := bob.ComputeValue(i.PublicA)
	if err != nil {
		return nil, err
	}
	if ka != kb {
		return nil, DISAGREEMENT.Apply([]uint64{ka, kb})
	}
	i.Secret = ka

	if i.RecoveredA, err = modp.RecoverPrivateKey(alpha, i.PublicA, q); err != nil {
		return i, err
	}
	i.Stolen, _ = modp.SharedSecret(i.PublicB, i.RecoveredA, q)
	if log.V(log.LV_EAVESDRP) {
		log.Infof("eavesdrop q=%d YA=%d YB=%d x'=%d K=%d stolen=%d", q, i.PublicA, i.PublicB, i.RecoveredA, i.Secret, i.Stolen)
	}
	return i, nil
}
