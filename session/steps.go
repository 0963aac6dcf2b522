package session

import (
	"bytes"
	"fmt"

	"github.com/Lafeng/dhdemo/modp"
)

func tableSteps(alpha, q uint64, table modp.PowerTable, verdict bool) string {
	var buf = new(bytes.Buffer)
	fmt.Fprintln(buf, "Primitive Root Check:")
	fmt.Fprintf(buf, "1. Compute %d^i mod %d for i = 1 .. %d\n", alpha, q, q-1)
	fmt.Fprintf(buf, "2. %d rows produced\n", len(table))
	if verdict {
		fmt.Fprintf(buf, "3. All %d residues are distinct, so α = %d is a primitive root of %d", q-1, alpha, q)
	} else {
		fmt.Fprintf(buf, "3. Some residues repeat, so α = %d is not a primitive root of %d", alpha, q)
	}
	return buf.String()
}

func publicKeySteps(alpha, q, xa, xb, ya, yb uint64) string {
	return fmt.Sprintf(`Public Key Calculation:
1. Alice uses private key XA = %[3]d to compute:
   YA = α^XA mod q = %[1]d^%[3]d mod %[2]d = %[5]d

2. Bob uses private key XB = %[4]d to compute:
   YB = α^XB mod q = %[1]d^%[4]d mod %[2]d = %[6]d

3. Alice and Bob exchange public keys YA and YB`, alpha, q, xa, xb, ya, yb)
}

func secretSteps(party Party, q, priv, peer, k uint64) string {
	var me, other, pronoun = "A", "B", "her"
	if party == Bob {
		me, other, pronoun = "B", "A", "his"
	}
	peerName := Alice
	if party == Alice {
		peerName = Bob
	}
	return fmt.Sprintf(`Secret Key Calculation:
1. %[1]s uses %[2]s's public key Y%[3]s = %[5]d and %[6]s private key X%[4]s = %[7]d:
   K = Y%[3]s^X%[4]s mod q = %[5]d^%[7]d mod %[8]d = %[9]d

2. %[1]s now has the shared secret key K = %[9]d`,
		party, peerName, other, me, peer, pronoun, priv, q, k)
}

func recoverSteps(alpha, q, y, x uint64) string {
	return fmt.Sprintf(`Discrete Logarithm Computation:
1. We need to find X where α^X mod q = Y
2. For public key Y = %[3]d, we need X where %[1]d^X mod %[2]d = %[3]d
3. Using brute force, we try each possible value for X
4. Found X = %[4]d, which gives %[1]d^%[4]d mod %[2]d = %[3]d

5. Therefore, the private key X = %[4]d`, alpha, q, y, x)
}

func notFoundSteps(y uint64) string {
	return fmt.Sprintf("No private key found that generates the public key %d.", y)
}
