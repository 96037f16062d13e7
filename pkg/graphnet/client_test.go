package graphnet_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiomede/graph-metrics/pkg/graphnet"
)

func TestClient_FetchDelegationEvents(t *testing.T) {
	t.Parallel()

	t.Run("it fetches both event streams", func(t *testing.T) {
		t.Parallel()

		// Arrange
		srv := newSubgraph(t, http.StatusOK, `{
			"data": {
				"stakeDelegateds": [
					{"id": "d1", "delegator": "0xdel", "indexer": "0xind",
					 "tokens": "1000000000000000000", "timestamp": "1700000000",
					 "transactionHash": "0xaaa"}
				],
				"stakeDelegatedLockeds": [
					{"id": "w1", "delegator": "0xdel", "indexer": "0xind",
					 "tokens": "500000000000000000", "timestamp": "1700000100",
					 "transactionHash": "0xbbb"}
				]
			}
		}`)
		client := graphnet.NewClient(srv.URL)

		// Act
		events, err := client.FetchDelegationEvents(context.Background(), 100)

		// Assert
		require.NoError(t, err)
		require.Len(t, events.Deposits, 1)
		require.Len(t, events.Withdrawals, 1)
		assert.Equal(t, "d1", events.Deposits[0].ID)
		assert.Equal(t, "1000000000000000000", events.Deposits[0].Tokens)
		assert.Equal(t, "0xbbb", events.Withdrawals[0].TransactionHash)
	})

	t.Run("it passes the limit as a query variable", func(t *testing.T) {
		t.Parallel()

		// Arrange
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.Write([]byte(`{"data": {"stakeDelegateds": [], "stakeDelegatedLockeds": []}}`))
		}))
		t.Cleanup(srv.Close)
		client := graphnet.NewClient(srv.URL)

		// Act
		_, err := client.FetchDelegationEvents(context.Background(), 100)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, float64(100), req.Variables["first"])
	})

	t.Run("it tolerates empty event streams", func(t *testing.T) {
		t.Parallel()

		srv := newSubgraph(t, http.StatusOK, `{"data": {"stakeDelegateds": [], "stakeDelegatedLockeds": []}}`)
		client := graphnet.NewClient(srv.URL)

		events, err := client.FetchDelegationEvents(context.Background(), 100)

		require.NoError(t, err)
		assert.Empty(t, events.Deposits)
		assert.Empty(t, events.Withdrawals)
	})

	t.Run("it rejects a response missing an event collection", func(t *testing.T) {
		t.Parallel()

		srv := newSubgraph(t, http.StatusOK, `{"data": {"stakeDelegateds": []}}`)
		client := graphnet.NewClient(srv.URL)

		_, err := client.FetchDelegationEvents(context.Background(), 100)

		assert.ErrorIs(t, err, graphnet.ErrMalformedResponse)
	})

	t.Run("it surfaces GraphQL errors", func(t *testing.T) {
		t.Parallel()

		srv := newSubgraph(t, http.StatusOK, `{"errors": [{"message": "indexing error"}]}`)
		client := graphnet.NewClient(srv.URL)

		_, err := client.FetchDelegationEvents(context.Background(), 100)

		require.ErrorIs(t, err, graphnet.ErrMalformedResponse)
		assert.ErrorContains(t, err, "indexing error")
	})

	t.Run("it rejects a non-200 status", func(t *testing.T) {
		t.Parallel()

		srv := newSubgraph(t, http.StatusBadGateway, `upstream error`)
		client := graphnet.NewClient(srv.URL)

		_, err := client.FetchDelegationEvents(context.Background(), 100)

		require.ErrorIs(t, err, graphnet.ErrUnexpectedStatus)
		assert.ErrorContains(t, err, "502")
	})

	t.Run("it rejects an undecodable body", func(t *testing.T) {
		t.Parallel()

		srv := newSubgraph(t, http.StatusOK, `not json at all`)
		client := graphnet.NewClient(srv.URL)

		_, err := client.FetchDelegationEvents(context.Background(), 100)

		assert.ErrorIs(t, err, graphnet.ErrMalformedResponse)
	})
}

func TestClient_FetchNetworkMetrics(t *testing.T) {
	t.Parallel()

	t.Run("it fetches delegator counters", func(t *testing.T) {
		t.Parallel()

		// Arrange
		srv := newSubgraph(t, http.StatusOK, `{
			"data": {
				"graphNetworks": [
					{"delegatorCount": "123456", "activeDelegatorCount": "54321"}
				]
			}
		}`)
		client := graphnet.NewClient(srv.URL)

		// Act
		metrics, err := client.FetchNetworkMetrics(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "123456", metrics.DelegatorCount)
		assert.Equal(t, "54321", metrics.ActiveDelegatorCount)
	})

	t.Run("it tolerates a missing counter field", func(t *testing.T) {
		t.Parallel()

		srv := newSubgraph(t, http.StatusOK, `{"data": {"graphNetworks": [{"delegatorCount": "42"}]}}`)
		client := graphnet.NewClient(srv.URL)

		metrics, err := client.FetchNetworkMetrics(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "42", metrics.DelegatorCount)
		assert.Empty(t, metrics.ActiveDelegatorCount)
	})

	t.Run("it rejects a response without a graphNetworks entity", func(t *testing.T) {
		t.Parallel()

		srv := newSubgraph(t, http.StatusOK, `{"data": {"graphNetworks": []}}`)
		client := graphnet.NewClient(srv.URL)

		_, err := client.FetchNetworkMetrics(context.Background())

		assert.ErrorIs(t, err, graphnet.ErrMalformedResponse)
	})
}

// newSubgraph serves a canned response to every GraphQL POST.
func newSubgraph(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
