package api

// DelegationsRequest represents the query parameters for GET /network/delegations
type DelegationsRequest struct {
	Search  string `query:"search"`   // Optional indexer address/name filter
	Window  string `query:"window"`   // Time window: all, 24h, 48h, 72h (default: all)
	Sort    string `query:"sort"`     // Sort key: type, delegator, indexer, amount, updated
	Dir     string `query:"dir"`      // Sort direction: asc, desc
	Page    uint64 `query:"page"`     // Page number for pagination (default: 1)
	PerPage uint64 `query:"per_page"` // Number of items per page (default: 25, max: 100)
}

// Activity represents a single activity row in the API response
type Activity struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Delegator     string `json:"delegator"`
	DelegatorName string `json:"delegator_name,omitempty"`
	Indexer       string `json:"indexer"`
	IndexerName   string `json:"indexer_name,omitempty"`
	Transaction   string `json:"transaction,omitempty"`
	Amount        string `json:"amount"`     // display units, two fractional digits
	AmountRaw     string `json:"amount_raw"` // smallest unit, exact
	Updated       string `json:"updated"`    // RFC 3339 UTC
}

// Totals represents aggregate amounts over the filtered view, in display units
type Totals struct {
	Delegated   string `json:"delegated"`
	Undelegated string `json:"undelegated"`
	Net         string `json:"net"`
}

// NetworkMetrics represents the secondary delegator counters.
// Available is false when the metrics source was unreachable.
type NetworkMetrics struct {
	Available            bool   `json:"available"`
	DelegatorCount       string `json:"delegator_count,omitempty"`
	ActiveDelegatorCount string `json:"active_delegator_count,omitempty"`
}

// DelegationsResponse represents the API response for GET /network/delegations
type DelegationsResponse struct {
	State         string         `json:"state"`
	Stale         bool           `json:"stale"`
	Error         string         `json:"error,omitempty"`
	Data          []Activity     `json:"data"`
	Totals        Totals         `json:"totals"`
	Metrics       NetworkMetrics `json:"metrics"`
	Page          uint64         `json:"page"`
	PerPage       uint64         `json:"per_page"`
	TotalPages    uint64         `json:"total_pages"`
	TotalRecords  int            `json:"total_records"`
	DroppedEvents int            `json:"dropped_events"`
	RefreshedAt   string         `json:"refreshed_at,omitempty"`
}

// RefreshResponse represents the API response for POST /network/refresh
type RefreshResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}
