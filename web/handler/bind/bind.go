package bind

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiomede/graph-metrics/feed"
	"github.com/pdiomede/graph-metrics/web/api"
)

// Sentinel errors for request binding
var (
	ErrInvalidWindow  = errors.New("invalid window parameter")
	ErrInvalidSort    = errors.New("invalid sort parameter")
	ErrInvalidDir     = errors.New("invalid dir parameter")
	ErrInvalidPage    = errors.New("invalid page parameter")
	ErrInvalidPerPage = errors.New("invalid per_page parameter")

	// Specific page validation errors
	ErrPageNotNumeric  = errors.New("page must be numeric")
	ErrPageNotPositive = errors.New("page must be positive")

	// Specific per_page validation errors
	ErrPerPageNotNumeric  = errors.New("per_page must be numeric")
	ErrPerPageNotPositive = errors.New("per_page must be positive")
)

// ViewSelection is the validated, domain-typed form of a delegations request
type ViewSelection struct {
	Search  string
	Window  feed.Window
	SortKey feed.SortKey
	Dir     feed.Direction
	Page    feed.Page
	PerPage feed.PerPage
}

// GetDelegationsRequest binds HTTP query parameters to a ViewSelection with
// defaults: all-time window, Updated/descending sort, first page of 25.
func GetDelegationsRequest(r *http.Request) (ViewSelection, error) {
	sel := ViewSelection{
		Window:  feed.WindowAll,
		SortKey: feed.SortByUpdated,
		Dir:     feed.Descending,
		Page:    feed.ParsePage(0),
	}
	sel.PerPage, _ = feed.ParsePerPage(0)

	query := r.URL.Query()
	sel.Search = query.Get("search")

	window, err := feed.ParseWindow(query.Get("window"))
	if err != nil {
		return sel, fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}
	sel.Window = window

	if sortParam := query.Get("sort"); sortParam != "" {
		key, err := feed.ParseSortKey(sortParam)
		if err != nil {
			return sel, fmt.Errorf("%w: %w", ErrInvalidSort, err)
		}
		sel.SortKey = key

		// An explicit sort defaults to ascending unless dir says otherwise.
		sel.Dir = feed.Ascending
	}

	if dirParam := query.Get("dir"); dirParam != "" {
		dir, err := feed.ParseDirection(dirParam)
		if err != nil {
			return sel, fmt.Errorf("%w: %w", ErrInvalidDir, err)
		}
		sel.Dir = dir
	}

	if pageParam := query.Get("page"); pageParam != "" {
		page, err := parsePageNumber(pageParam)
		if err != nil {
			return sel, fmt.Errorf("%w: %w", ErrInvalidPage, err)
		}
		sel.Page = feed.ParsePage(page)
	}

	if perPageParam := query.Get("per_page"); perPageParam != "" {
		perPage, err := parsePerPageLimit(perPageParam)
		if err != nil {
			return sel, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
		}
		sel.PerPage = perPage
	}

	return sel, nil
}

// parsePageNumber validates that the page parameter is a positive integer
func parsePageNumber(pageParam string) (uint64, error) {
	page, err := strconv.ParseUint(pageParam, 10, 64)
	if err != nil {
		return 0, ErrPageNotNumeric
	}
	if page == 0 {
		return 0, ErrPageNotPositive
	}
	return page, nil
}

// parsePerPageLimit validates that the per_page parameter is within limits
func parsePerPageLimit(perPageParam string) (feed.PerPage, error) {
	perPage, err := strconv.ParseUint(perPageParam, 10, 64)
	if err != nil {
		return 0, ErrPerPageNotNumeric
	}
	if perPage == 0 {
		return 0, ErrPerPageNotPositive
	}
	return feed.ParsePerPage(perPage)
}

// ActivityRows binds domain activities to API response rows
func ActivityRows(activities []feed.Activity) []api.Activity {
	rows := make([]api.Activity, len(activities))
	for i, a := range activities {
		rows[i] = api.Activity{
			ID:            a.ID,
			Type:          a.Kind(),
			Delegator:     a.DelegatorAddress,
			DelegatorName: a.DelegatorName,
			Indexer:       a.IndexerAddress,
			IndexerName:   a.IndexerName,
			Transaction:   a.TransactionHash,
			Amount:        feed.FormatGRT(a.EffectiveAmount()),
			AmountRaw:     a.EffectiveAmount().String(),
			Updated:       time.Unix(a.EffectiveTimestamp(), 0).UTC().Format(time.RFC3339),
		}
	}
	return rows
}

// TotalsResponse binds aggregate totals to the API response format
func TotalsResponse(totals feed.Totals) api.Totals {
	return api.Totals{
		Delegated:   feed.FormatGRT(totals.Delegated),
		Undelegated: feed.FormatGRT(totals.Undelegated),
		Net:         feed.FormatGRT(totals.Net),
	}
}

// MetricsResponse binds feed metrics to the API response format
func MetricsResponse(m feed.Metrics) api.NetworkMetrics {
	return api.NetworkMetrics{
		Available:            m.Available,
		DelegatorCount:       m.DelegatorCount,
		ActiveDelegatorCount: m.ActiveDelegatorCount,
	}
}
