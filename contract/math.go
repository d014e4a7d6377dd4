package contract

import "math/big"

// Threshold and share math goes through big.Int so cross-multiplication
// never overflows int64 on large supplies.

// meetsBps reports whether value/total reaches bps basis points. A zero
// total is never met.
func meetsBps(value Amount, bps uint32, total Amount) bool {
	if total <= 0 {
		return false
	}
	lhs := new(big.Int).Mul(big.NewInt(int64(value)), big.NewInt(10000))
	rhs := new(big.Int).Mul(big.NewInt(int64(total)), big.NewInt(int64(bps)))
	return lhs.Cmp(rhs) >= 0
}

// mulDiv computes a*b/c rounded down.
func mulDiv(a, b, c Amount) Amount {
	if c == 0 {
		return 0
	}
	n := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(b)))
	n.Quo(n, big.NewInt(int64(c)))
	return Amount(n.Int64())
}
