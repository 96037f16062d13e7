package feed

import (
	"errors"
	"fmt"
)

// Default pagination values
const (
	DefaultPage    = 1   // Default to first page
	DefaultPerPage = 25  // Default pagination size
	MaxPerPage     = 100 // Maximum items per page
)

// Page represents a 1-based page number
type Page uint64

// PerPage represents items per page
type PerPage uint64

// Pagination validation errors
var (
	ErrPerPageTooLarge = errors.New("per_page exceeds maximum limit")
)

// ParsePage creates a Page; zero means the default first page
func ParsePage(page uint64) Page {
	if page == 0 {
		return Page(DefaultPage)
	}
	return Page(page)
}

// ParsePerPage creates a PerPage with domain validation; zero means default
func ParsePerPage(perPage uint64) (PerPage, error) {
	if perPage == 0 {
		return PerPage(DefaultPerPage), nil
	}
	if perPage > MaxPerPage {
		return 0, fmt.Errorf("%w: must be between 1 and %d", ErrPerPageTooLarge, MaxPerPage)
	}
	return PerPage(perPage), nil
}

// Uint64 returns the underlying uint64 value
func (p Page) Uint64() uint64 {
	return uint64(p)
}

// Uint64 returns the underlying uint64 value
func (pp PerPage) Uint64() uint64 {
	return uint64(pp)
}

// Paginate slices one page out of the sequence. Out-of-range page numbers
// yield an empty slice, not an error.
func Paginate(activities []Activity, size PerPage, page Page) []Activity {
	if size == 0 || page == 0 {
		return nil
	}

	// The offset multiplication would overflow for huge page numbers;
	// anything past the last page is empty regardless.
	if page.Uint64()-1 > uint64(len(activities))/size.Uint64() {
		return []Activity{}
	}

	start := (page.Uint64() - 1) * size.Uint64()
	if start >= uint64(len(activities)) {
		return []Activity{}
	}

	end := min(start+size.Uint64(), uint64(len(activities)))
	return activities[start:end]
}

// TotalPages returns ceil(n/size); 0 for an empty sequence
func TotalPages(n int, size PerPage) uint64 {
	if n <= 0 || size == 0 {
		return 0
	}
	return (uint64(n) + size.Uint64() - 1) / size.Uint64()
}
