package tunnel

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"
	"net"
	"time"

	"github.com/Lafeng/dhdemo/crypto"
	log "github.com/Lafeng/dhdemo/glog"
	"github.com/Lafeng/dhdemo/modp"
)

const (
	_MAGIC       = "DH1"
	_HELLO_LEN   = len(_MAGIC) + 8*3 // magic q alpha Y
	_CONFIRM_LEN = 8

	ROLE_INITIATOR = 1 // dials, speaks first (Bob)
	ROLE_RESPONDER = 2 // listens (Alice)
)

// Party is one side of the exchange.
type Party struct {
	Alpha, Prime uint64
	// 0 draws a fresh key in [1, q-2] for every exchange
	PrivateKey uint64
	Timeout    time.Duration
}

// Result of one completed exchange, from the local point of view.
type Result struct {
	Role        int
	Alpha       uint64
	Prime       uint64
	Private     uint64
	Public      uint64
	PeerPublic  uint64
	Secret      uint64
	Fingerprint uint64
}

func NewParty(alpha, q, priv uint64, timeout time.Duration) (*Party, error) {
	if q < 3 {
		return nil, CONF_ERROR.Apply("Prime")
	}
	if priv > q-2 {
		return nil, CONF_ERROR.Apply("PrivateKey")
	}
	if !modp.IsPrimitiveRoot(alpha, q) {
		return nil, NOT_GENERATOR.Apply(alpha)
	}
	if timeout <= 0 {
		timeout = GENERAL_SO_TIMEOUT
	}
	return &Party{Alpha: alpha, Prime: q, PrivateKey: priv, Timeout: timeout}, nil
}

// random in [1, q-2]
func (p *Party) privateKey() (uint64, error) {
	if p.PrivateKey != 0 {
		return p.PrivateKey, nil
	}
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(p.Prime-2))
	if err != nil {
		return 0, err
	}
	return n.Uint64() + 1, nil
}

func (p *Party) newResult(role int) (*Result, error) {
	x, err := p.privateKey()
	if err != nil {
		return nil, err
	}
	y, err := modp.PublicKey(p.Alpha, x, p.Prime)
	if err != nil {
		return nil, err
	}
	return &Result{Role: role, Alpha: p.Alpha, Prime: p.Prime, Private: x, Public: y}, nil
}

// Initiate runs the dialer side:
//
//	-> hello(q, alpha, YB)
//	<- hello(q, alpha, YA)
//	-> tag(initiator)
//	<- tag(responder)
func (p *Party) Initiate(conn net.Conn) (res *Result, err error) {
	if res, err = p.newResult(ROLE_INITIATOR); err != nil {
		return nil, err
	}
	conn.SetDeadline(time.Now().Add(p.Timeout))
	defer conn.SetDeadline(time.Time{})

	if err = writeHello(conn, p.Prime, p.Alpha, res.Public); err != nil {
		return nil, err
	}
	if res.PeerPublic, err = p.readHello(conn); err != nil {
		return nil, err
	}
	if err = p.agree(res); err != nil {
		return nil, err
	}
	// transcript is always (YA, YB) = (responder, initiator)
	mine := crypto.Fingerprint(res.Secret, ROLE_INITIATOR, p.Prime, p.Alpha, res.PeerPublic, res.Public)
	theirs := crypto.Fingerprint(res.Secret, ROLE_RESPONDER, p.Prime, p.Alpha, res.PeerPublic, res.Public)
	if err = writeUint64(conn, mine); err != nil {
		return nil, err
	}
	if err = readConfirm(conn, theirs); err != nil {
		return nil, err
	}
	res.Fingerprint = mine
	return res, nil
}

// Respond runs the listener side, mirror of Initiate.
func (p *Party) Respond(conn net.Conn) (res *Result, err error) {
	if res, err = p.newResult(ROLE_RESPONDER); err != nil {
		return nil, err
	}
	conn.SetDeadline(time.Now().Add(p.Timeout))
	defer conn.SetDeadline(time.Time{})

	if res.PeerPublic, err = p.readHello(conn); err != nil {
		return nil, err
	}
	if err = writeHello(conn, p.Prime, p.Alpha, res.Public); err != nil {
		return nil, err
	}
	if err = p.agree(res); err != nil {
		return nil, err
	}
	mine := crypto.Fingerprint(res.Secret, ROLE_RESPONDER, p.Prime, p.Alpha, res.Public, res.PeerPublic)
	theirs := crypto.Fingerprint(res.Secret, ROLE_INITIATOR, p.Prime, p.Alpha, res.Public, res.PeerPublic)
	if err = readConfirm(conn, theirs); err != nil {
		return nil, err
	}
	if err = writeUint64(conn, mine); err != nil {
		return nil, err
	}
	res.Fingerprint = mine
	return res, nil
}

func (p *Party) agree(res *Result) (err error) {
	if res.PeerPublic == 0 || res.PeerPublic >= p.Prime {
		return HANDSHAKE_FAILED.Apply("public key out of range")
	}
	res.Secret, err = modp.SharedSecret(res.PeerPublic, res.Private, p.Prime)
	if log.V(log.LV_HANDSHK) {
		log.Infof("role=%d Y=%d peerY=%d", res.Role, res.Public, res.PeerPublic)
	}
	return
}

func writeHello(w io.Writer, q, alpha, y uint64) error {
	var buf = make([]byte, _HELLO_LEN)
	copy(buf, _MAGIC)
	binary.BigEndian.PutUint64(buf[3:], q)
	binary.BigEndian.PutUint64(buf[11:], alpha)
	binary.BigEndian.PutUint64(buf[19:], y)
	if log.V(log.LV_FRAME) {
		log.Infof("-> hello % x", buf)
	}
	_, err := w.Write(buf)
	return err
}

func (p *Party) readHello(r io.Reader) (uint64, error) {
	var buf = make([]byte, _HELLO_LEN)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, HANDSHAKE_FAILED.Apply(err)
	}
	if log.V(log.LV_FRAME) {
		log.Infof("<- hello % x", buf)
	}
	if string(buf[:3]) != _MAGIC {
		return 0, HANDSHAKE_FAILED.Apply("bad magic")
	}
	q := binary.BigEndian.Uint64(buf[3:])
	alpha := binary.BigEndian.Uint64(buf[11:])
	if q != p.Prime || alpha != p.Alpha {
		return 0, PARAMS_MISMATCH.Apply([]uint64{q, alpha})
	}
	return binary.BigEndian.Uint64(buf[19:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var buf = make([]byte, _CONFIRM_LEN)
	binary.BigEndian.PutUint64(buf, v)
	_, err := w.Write(buf)
	return err
}

func readConfirm(r io.Reader, expected uint64) error {
	var buf = make([]byte, _CONFIRM_LEN)
	if _, err := io.ReadFull(r, buf); err != nil {
		return HANDSHAKE_FAILED.Apply(err)
	}
	if binary.BigEndian.Uint64(buf) != expected {
		return KEY_CONFIRM_FAILED
	}
	return nil
}
