package handler

import (
	"net/http"
	"time"

	"github.com/pdiomede/graph-metrics/feed"
	"github.com/pdiomede/graph-metrics/pkg/httpkit"
	"github.com/pdiomede/graph-metrics/web/api"
	"github.com/pdiomede/graph-metrics/web/handler/bind"
)

const GetDelegationsRoute = http.MethodGet + " " + "/network/delegations"

// FeedViewer exposes the current feed state and snapshot
type FeedViewer interface {
	View() feed.View
}

// Clock abstracts time for the window filter and export filenames
type Clock interface {
	Now() time.Time
}

type NetworkGetDelegations struct {
	viewer FeedViewer
	clock  Clock
}

func NewNetworkGetDelegations(viewer FeedViewer, clock Clock) *NetworkGetDelegations {
	return &NetworkGetDelegations{
		viewer: viewer,
		clock:  clock,
	}
}

func (h *NetworkGetDelegations) AddRoutes(m *http.ServeMux) {
	m.Handle(GetDelegationsRoute, httpkit.HandlerFunc(h.GetDelegations))
}

func (h *NetworkGetDelegations) GetDelegations(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	sel, err := bind.GetDelegationsRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	view := h.viewer.View()

	// Derive the requested view: filters compose by intersection and are
	// independent of the sort; aggregates follow all active filters.
	filtered := feed.FilterText(view.Snapshot.Activities, sel.Search)
	filtered = feed.FilterWindow(filtered, sel.Window, h.clock.Now())
	totals := feed.ComputeTotals(filtered)
	sorted := feed.Sort(filtered, sel.SortKey, sel.Dir)
	page := feed.Paginate(sorted, sel.PerPage, sel.Page)

	resp := api.DelegationsResponse{
		State:         view.State.String(),
		Stale:         view.Stale,
		Error:         view.ErrorMessage,
		Data:          bind.ActivityRows(page),
		Totals:        bind.TotalsResponse(totals),
		Metrics:       bind.MetricsResponse(view.Snapshot.Metrics),
		Page:          sel.Page.Uint64(),
		PerPage:       sel.PerPage.Uint64(),
		TotalPages:    feed.TotalPages(len(sorted), sel.PerPage),
		TotalRecords:  len(sorted),
		DroppedEvents: view.Snapshot.Dropped,
	}
	if !view.Snapshot.RefreshedAt.IsZero() {
		resp.RefreshedAt = view.Snapshot.RefreshedAt.UTC().Format(time.RFC3339)
	}

	return httpkit.JSON(resp)
}
