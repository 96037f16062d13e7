package handler

import (
	"net/http"

	"github.com/pdiomede/graph-metrics/feed"
	"github.com/pdiomede/graph-metrics/pkg/httpkit"
	"github.com/pdiomede/graph-metrics/web/api"
	"github.com/pdiomede/graph-metrics/web/handler/bind"
)

const ExportDelegationsRoute = http.MethodGet + " " + "/network/delegations/export"

const csvContentType = "text/csv; charset=utf-8"

type NetworkExportDelegations struct {
	viewer FeedViewer
	clock  Clock
}

func NewNetworkExportDelegations(viewer FeedViewer, clock Clock) *NetworkExportDelegations {
	return &NetworkExportDelegations{
		viewer: viewer,
		clock:  clock,
	}
}

func (h *NetworkExportDelegations) AddRoutes(m *http.ServeMux) {
	m.Handle(ExportDelegationsRoute, httpkit.HandlerFunc(h.ExportDelegations))
}

// ExportDelegations downloads the current filtered, sorted view as CSV.
// Pagination does not apply to exports; the whole view is serialized.
func (h *NetworkExportDelegations) ExportDelegations(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	sel, err := bind.GetDelegationsRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	view := h.viewer.View()
	now := h.clock.Now()

	filtered := feed.FilterText(view.Snapshot.Activities, sel.Search)
	filtered = feed.FilterWindow(filtered, sel.Window, now)
	sorted := feed.Sort(filtered, sel.SortKey, sel.Dir)

	return httpkit.Download(feed.ExportFilename(now), csvContentType, feed.ExportCSV(sorted))
}
