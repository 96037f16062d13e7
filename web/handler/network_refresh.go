package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/pdiomede/graph-metrics/feed"
	"github.com/pdiomede/graph-metrics/pkg/httpkit"
	"github.com/pdiomede/graph-metrics/web/api"
)

const RefreshRoute = http.MethodPost + " " + "/network/refresh"

// Refresher triggers one feed refresh cycle
type Refresher interface {
	Refresh(ctx context.Context) error
	View() feed.View
}

type NetworkRefresh struct {
	refresher Refresher
}

func NewNetworkRefresh(refresher Refresher) *NetworkRefresh {
	return &NetworkRefresh{
		refresher: refresher,
	}
}

func (h *NetworkRefresh) AddRoutes(m *http.ServeMux) {
	m.Handle(RefreshRoute, httpkit.HandlerFunc(h.Refresh))
}

// Refresh runs one fetch→merge→enrich cycle synchronously. A concurrent
// refresh is rejected with 409 rather than queued; a failed refresh is
// reported through the feed state, not as a transport error.
func (h *NetworkRefresh) Refresh(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	err := h.refresher.Refresh(r.Context())
	switch {
	case errors.Is(err, feed.ErrRefreshInFlight):
		return httpkit.JsonError(api.Conflict(err))
	case err != nil && !errors.Is(err, feed.ErrEventSource):
		// An event-source failure shows up in the feed state below; anything
		// else is unexpected.
		return httpkit.JsonError(api.Wrap(err))
	}

	view := h.refresher.View()
	return httpkit.JSON(api.RefreshResponse{
		State: view.State.String(),
		Error: view.ErrorMessage,
	})
}
