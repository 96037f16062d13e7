package feed

import (
	"math/big"
	"sort"
	"strconv"

	"github.com/pdiomede/graph-metrics/pkg/graphnet"
)

// Feed size caps. Which one applies depends on the configured horizon;
// it is an operator constant, never user input.
const (
	CapRecent = 100
	CapFull   = 1000
)

// MergeDiagnostics reports events dropped during a merge. Dropped events are
// never fatal; the count is surfaced to the operator as a diagnostic.
type MergeDiagnostics struct {
	Dropped int
}

// Merge converts the two raw event streams into one unified sequence,
// ordered by effective timestamp descending and truncated to cap.
// It is a pure transform: the same inputs always produce the same output.
// Events with an unparsable amount or timestamp are dropped and counted.
func Merge(events *graphnet.DelegationEvents, cap int) ([]Activity, MergeDiagnostics) {
	var diag MergeDiagnostics

	activities := make([]Activity, 0, len(events.Deposits)+len(events.Withdrawals))

	for _, ev := range events.Deposits {
		amount, ts, ok := parseEvent(ev)
		if !ok {
			diag.Dropped++
			continue
		}
		activities = append(activities, Activity{
			ID:               ev.ID,
			DelegatorAddress: ev.Delegator,
			IndexerAddress:   ev.Indexer,
			StakedAmount:     amount,
			UnstakedAmount:   new(big.Int),
			DelegatedAt:      ts,
			TransactionHash:  ev.TransactionHash,
		})
	}

	for _, ev := range events.Withdrawals {
		amount, ts, ok := parseEvent(ev)
		if !ok {
			diag.Dropped++
			continue
		}
		activities = append(activities, Activity{
			ID:               ev.ID,
			DelegatorAddress: ev.Delegator,
			IndexerAddress:   ev.Indexer,
			StakedAmount:     new(big.Int),
			UnstakedAmount:   amount,
			UndelegatedAt:    ts,
			TransactionHash:  ev.TransactionHash,
		})
	}

	// Stable keeps the deposits-then-withdrawals input order on timestamp
	// ties, which makes the merge deterministic.
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].EffectiveTimestamp() > activities[j].EffectiveTimestamp()
	})

	if cap > 0 && len(activities) > cap {
		activities = activities[:cap]
	}

	return activities, diag
}

// parseEvent validates the decimal-string fields of a raw event.
// Amounts must be non-negative integers; timestamps positive Unix seconds.
func parseEvent(ev graphnet.DelegationEvent) (*big.Int, int64, bool) {
	amount, ok := new(big.Int).SetString(ev.Tokens, 10)
	if !ok || amount.Sign() < 0 {
		return nil, 0, false
	}

	ts, err := strconv.ParseInt(ev.Timestamp, 10, 64)
	if err != nil || ts <= 0 {
		return nil, 0, false
	}

	return amount, ts, true
}
