package session

import (
	"strings"
)

// AlgorithmText describes the protocol step by step.
func AlgorithmText() string {
	return strings.TrimSpace(_ALGORITHM)
}

const _ALGORITHM = `
Diffie-Hellman Key Exchange Algorithm

1. Setup: choose a prime number q and a primitive root α of q.

2. Private Key Generation:
   - Alice selects a random private key XA, 1 < XA < q-1
   - Bob selects a random private key XB, 1 < XB < q-1

3. Public Key Calculation:
   - Alice: YA = α^XA mod q
   - Bob:   YB = α^XB mod q

4. Public Key Exchange:
   - Alice sends YA to Bob over an insecure channel
   - Bob sends YB to Alice over an insecure channel

5. Shared Secret Calculation:
   - Alice: K = YB^XA mod q
   - Bob:   K = YA^XB mod q

6. Verification: both hold the same K because
   YB^XA = (α^XB)^XA = α^(XA·XB) = (α^XA)^XB = YA^XB  (mod q)

Security note: an attacker who sees q, α, YA and YB must solve a discrete
logarithm to learn XA or XB. The brute-force search of this tool needs up to
q-1 exponentiations, which is hopeless for the sizes used in practice.
`
