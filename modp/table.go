package modp

// one row of the power table: alpha^Exponent mod q = Result
type PowerEntry struct {
	Exponent uint64
	Result   uint64
}

// PowerTable lists alpha^i mod q for i = 1..q-1 in exponent order.
type PowerTable []PowerEntry

// Results returns the residue column.
func (t PowerTable) Results() []uint64 {
	res := make([]uint64, len(t))
	for i, e := range t {
		res[i] = e.Result
	}
	return res
}

// BuildPowerTable computes alpha^i mod q for every i in [1, q-1] and reports
// whether alpha is a primitive root of q, i.e. whether the powers visit q-1
// distinct residues. For q <= 1 the table is empty and the verdict false.
//
// Cost is q-1 calls to Exp; nothing is cached between calls.
func BuildPowerTable(alpha, q uint64) (PowerTable, bool) {
	if q <= 1 {
		return nil, false
	}
	var (
		hint     = sizeHint(q)
		table    = make(PowerTable, 0, hint)
		seen     = make(map[uint64]struct{}, hint)
		distinct uint64
	)
	for i := uint64(1); i < q; i++ {
		r := Exp(alpha, i, q)
		table = append(table, PowerEntry{Exponent: i, Result: r})
		if _, y := seen[r]; !y {
			seen[r] = struct{}{}
			distinct++
		}
	}
	return table, distinct == q-1
}

// preallocation is capped; larger tables grow on demand
const maxSizeHint = 1 << 16

func sizeHint(q uint64) int {
	if q-1 > maxSizeHint {
		return maxSizeHint
	}
	return int(q - 1)
}

// IsPrimitiveRoot is BuildPowerTable without the table.
func IsPrimitiveRoot(alpha, q uint64) bool {
	_, verdict := BuildPowerTable(alpha, q)
	return verdict
}
