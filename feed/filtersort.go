package feed

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Sentinel errors for selector parsing
var (
	ErrUnknownWindow    = errors.New("unknown time window")
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// Window restricts records to the last N hours
// ---------------------------------------------
type Window int

const (
	WindowAll Window = iota // no time restriction
	Window24h
	Window48h
	Window72h
)

// Duration returns the window length, or 0 for WindowAll
func (w Window) Duration() time.Duration {
	switch w {
	case Window24h:
		return 24 * time.Hour
	case Window48h:
		return 48 * time.Hour
	case Window72h:
		return 72 * time.Hour
	default:
		return 0
	}
}

// String returns the query-parameter form of the window
func (w Window) String() string {
	switch w {
	case Window24h:
		return "24h"
	case Window48h:
		return "48h"
	case Window72h:
		return "72h"
	default:
		return "all"
	}
}

// ParseWindow parses the query-parameter form; "" means WindowAll
func ParseWindow(s string) (Window, error) {
	switch s {
	case "", "all":
		return WindowAll, nil
	case "24h":
		return Window24h, nil
	case "48h":
		return Window48h, nil
	case "72h":
		return Window72h, nil
	default:
		return WindowAll, ErrUnknownWindow
	}
}

// SortKey selects the comparator for ordering the feed
// -----------------------------------------------------
type SortKey int

const (
	SortByUpdated SortKey = iota // default: effective timestamp
	SortByType
	SortByDelegator
	SortByIndexer
	SortByAmount
)

// String returns the query-parameter form of the sort key
func (k SortKey) String() string {
	switch k {
	case SortByType:
		return "type"
	case SortByDelegator:
		return "delegator"
	case SortByIndexer:
		return "indexer"
	case SortByAmount:
		return "amount"
	default:
		return "updated"
	}
}

// ParseSortKey parses the query-parameter form; "" means SortByUpdated
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "", "updated":
		return SortByUpdated, nil
	case "type":
		return SortByType, nil
	case "delegator":
		return SortByDelegator, nil
	case "indexer":
		return SortByIndexer, nil
	case "amount":
		return SortByAmount, nil
	default:
		return SortByUpdated, ErrUnknownSortKey
	}
}

// Direction orders a sort ascending or descending
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the query-parameter form of the direction
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses the query-parameter form; "" means Ascending
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Ascending, ErrUnknownDirection
	}
}

// SortState tracks the active sort selection the way the presentation layer
// drives it: re-selecting the active key flips direction, selecting a new
// key resets to ascending.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// Toggle applies a key selection to the state
func (s *SortState) Toggle(key SortKey) {
	if s.Key == key {
		if s.Direction == Ascending {
			s.Direction = Descending
		} else {
			s.Direction = Ascending
		}
		return
	}
	s.Key = key
	s.Direction = Ascending
}

// FilterText keeps records whose indexer address or indexer name contains
// the given substring, case-insensitively. An empty filter keeps all.
func FilterText(activities []Activity, filter string) []Activity {
	if filter == "" {
		return activities
	}

	needle := strings.ToLower(filter)
	kept := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if strings.Contains(strings.ToLower(a.IndexerAddress), needle) ||
			strings.Contains(strings.ToLower(a.IndexerName), needle) {
			kept = append(kept, a)
		}
	}
	return kept
}

// FilterWindow keeps records whose effective timestamp falls within
// now−window. WindowAll keeps all.
func FilterWindow(activities []Activity, window Window, now time.Time) []Activity {
	if window == WindowAll {
		return activities
	}

	cutoff := now.Add(-window.Duration()).Unix()
	kept := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if a.EffectiveTimestamp() >= cutoff {
			kept = append(kept, a)
		}
	}
	return kept
}

// Sort orders a copy of the sequence by the given key and direction.
// The sort is stable, so equal keys keep their prior relative order and
// repeated sorts are idempotent.
func Sort(activities []Activity, key SortKey, direction Direction) []Activity {
	sorted := make([]Activity, len(activities))
	copy(sorted, activities)

	less := comparator(key)
	sort.SliceStable(sorted, func(i, j int) bool {
		if direction == Descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// comparator maps a sort key to its less function. The key set is a closed
// enumeration, so an invalid key cannot reach here.
func comparator(key SortKey) func(a, b Activity) bool {
	switch key {
	case SortByType:
		return func(a, b Activity) bool { return a.Kind() < b.Kind() }
	case SortByDelegator:
		return func(a, b Activity) bool { return a.DelegatorAddress < b.DelegatorAddress }
	case SortByIndexer:
		return func(a, b Activity) bool { return a.IndexerAddress < b.IndexerAddress }
	case SortByAmount:
		return func(a, b Activity) bool { return a.EffectiveAmount().Cmp(b.EffectiveAmount()) < 0 }
	default:
		return func(a, b Activity) bool { return a.EffectiveTimestamp() < b.EffectiveTimestamp() }
	}
}
