package feed

import "math/big"

// Totals holds aggregate amounts over a filtered record set, in the token's
// smallest unit. Sums stay integer; conversion to display units happens once
// at render time so no float error accumulates across additions.
type Totals struct {
	Delegated   *big.Int
	Undelegated *big.Int
	Net         *big.Int
}

// ComputeTotals sums staked amounts over delegation records and unstaked
// amounts over undelegation records. Net is exactly Delegated−Undelegated.
// A record with a missing amount contributes zero; it never aborts the sum.
func ComputeTotals(activities []Activity) Totals {
	delegated := new(big.Int)
	undelegated := new(big.Int)

	for _, a := range activities {
		if a.IsDelegation() {
			if a.StakedAmount != nil {
				delegated.Add(delegated, a.StakedAmount)
			}
		} else if a.UnstakedAmount != nil {
			undelegated.Add(undelegated, a.UnstakedAmount)
		}
	}

	return Totals{
		Delegated:   delegated,
		Undelegated: undelegated,
		Net:         new(big.Int).Sub(delegated, undelegated),
	}
}
