// Package feed implements the delegation activity pipeline: merging raw
// deposit and withdrawal events into one typed record stream, enriching
// records with ENS names, filtering, sorting, aggregating, paginating and
// exporting the result.
package feed

import (
	"math/big"
)

// Kind labels for an activity record
const (
	KindDelegation   = "Delegation"
	KindUndelegation = "Undelegation"
)

// grtScale is the token's display denomination: amounts arrive in the
// smallest unit and are divided by 10^18 exactly once at display time.
var grtScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Activity is the unified representation of a delegation or undelegation
// event. Exactly one of StakedAmount/UnstakedAmount is non-zero, and the
// matching timestamp field is the non-zero one; the other timestamp is 0.
type Activity struct {
	ID               string
	DelegatorAddress string
	IndexerAddress   string
	DelegatorName    string // empty until enriched, or when the address has no name
	IndexerName      string
	StakedAmount     *big.Int
	UnstakedAmount   *big.Int
	DelegatedAt      int64 // Unix seconds; 0 for withdrawal records
	UndelegatedAt    int64 // Unix seconds; 0 for deposit records
	TransactionHash  string
}

// IsDelegation reports whether the record originates from a deposit.
// A timestamp tie counts as a delegation.
func (a Activity) IsDelegation() bool {
	return a.DelegatedAt >= a.UndelegatedAt
}

// EffectiveTimestamp returns the record's relevant Unix timestamp
func (a Activity) EffectiveTimestamp() int64 {
	return max(a.DelegatedAt, a.UndelegatedAt)
}

// EffectiveAmount returns the record's relevant amount in the smallest unit
func (a Activity) EffectiveAmount() *big.Int {
	if a.IsDelegation() {
		return a.StakedAmount
	}
	return a.UnstakedAmount
}

// Kind returns the display label for the record's direction
func (a Activity) Kind() string {
	if a.IsDelegation() {
		return KindDelegation
	}
	return KindUndelegation
}

// FormatGRT converts a smallest-unit amount to display units with exactly
// two fractional digits. The division is exact rational arithmetic, so
// repeated exports are byte-identical and no float rounding accumulates.
func FormatGRT(amount *big.Int) string {
	if amount == nil {
		return "0.00"
	}
	return new(big.Rat).SetFrac(amount, grtScale).FloatString(2)
}
