package domain

import "math"

// MaxAmount caps any single debit, recharge, payment or sale total, in minor
// units. It keeps every balance computation far away from int64 overflow.
const MaxAmount int64 = 100_000_000_000

// ValidAmount reports whether a is a positive amount within MaxAmount.
func ValidAmount(a int64) bool {
	return a > 0 && a <= MaxAmount
}

// AddBalance returns balance+delta, or false when the sum would overflow.
func AddBalance(balance, delta int64) (int64, bool) {
	if delta > 0 && balance > math.MaxInt64-delta {
		return 0, false
	}
	if delta < 0 && balance < math.MinInt64-delta {
		return 0, false
	}
	return balance + delta, true
}
