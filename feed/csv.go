package feed

import (
	"strings"
	"time"
)

// CSVHeader is the fixed first row of every export
const CSVHeader = "Type,Delegator,Delegator Name,Indexer,Indexer Name,Transaction,Amount,Updated"

// ExportCSV serializes the sequence, in the caller-supplied order, to a CSV
// document: the header row followed by one row per record.
//
// Output is byte-identical for identical input. Amounts carry exactly two
// fractional digits in display units; timestamps are RFC 3339 UTC. Name
// fields are always quoted since resolved names may contain commas or
// quotes; the remaining fields are addresses, hashes and machine-formatted
// values that never do.
func ExportCSV(activities []Activity) []byte {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')

	for _, a := range activities {
		b.WriteString(a.Kind())
		b.WriteByte(',')
		b.WriteString(a.DelegatorAddress)
		b.WriteByte(',')
		b.WriteString(quote(a.DelegatorName))
		b.WriteByte(',')
		b.WriteString(a.IndexerAddress)
		b.WriteByte(',')
		b.WriteString(quote(a.IndexerName))
		b.WriteByte(',')
		b.WriteString(a.TransactionHash)
		b.WriteByte(',')
		b.WriteString(FormatGRT(a.EffectiveAmount()))
		b.WriteByte(',')
		b.WriteString(time.Unix(a.EffectiveTimestamp(), 0).UTC().Format(time.RFC3339))
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

// ExportFilename names a downloaded export after the moment it was taken.
// The ISO-8601 timestamp has ':' and '.' replaced for filesystem safety.
func ExportFilename(now time.Time) string {
	ts := now.UTC().Format(time.RFC3339)
	ts = strings.ReplaceAll(ts, ":", "-")
	ts = strings.ReplaceAll(ts, ".", "-")
	return "delegation-activity_" + ts + ".csv"
}

// quote wraps a field in double quotes, doubling embedded quotes
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
