package crypto

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

const _FP_TWEAK uint64 = 0x6468646d6f6b6579

// Fingerprint is a key-confirmation tag: SipHash-2-4 keyed by the shared
// secret over the exchange transcript. Two parties holding the same secret
// and transcript derive the same tag without revealing the secret.
func Fingerprint(secret uint64, transcript ...uint64) uint64 {
	buf := make([]byte, 8*len(transcript))
	for i, v := range transcript {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	return siphash.Hash(secret, secret^_FP_TWEAK, buf)
}
