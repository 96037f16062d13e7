// Package graphnet provides a client for The Graph network subgraph:
// delegation events (StakeDelegated / StakeDelegatedLocked) and
// network-wide delegator metrics.
package graphnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for upstream failures
var (
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed subgraph response")
)

// Client represents a Graph network subgraph client
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client with sane defaults against the hosted gateway
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewClientWithHTTP creates a client with a custom HTTP client and base URL
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// DelegationEvent is one raw on-chain event as the subgraph reports it.
// Tokens and Timestamp arrive as decimal strings; parsing is the feed's job.
type DelegationEvent struct {
	ID              string `json:"id"`
	Delegator       string `json:"delegator"`
	Indexer         string `json:"indexer"`
	Tokens          string `json:"tokens"`
	Timestamp       string `json:"timestamp"`
	TransactionHash string `json:"transactionHash"`
}

// DelegationEvents holds the two event streams of one fetch:
// stake deposits and stake withdrawals.
type DelegationEvents struct {
	Deposits    []DelegationEvent
	Withdrawals []DelegationEvent
}

// NetworkMetrics holds network-wide delegator counters.
// The subgraph reports them as decimal strings; either may be empty
// when the field is absent from the response.
type NetworkMetrics struct {
	DelegatorCount       string
	ActiveDelegatorCount string
}

const delegationEventsQuery = `query($first: Int!) {
  stakeDelegateds(first: $first, orderBy: timestamp, orderDirection: desc) {
    id delegator indexer tokens timestamp transactionHash
  }
  stakeDelegatedLockeds(first: $first, orderBy: timestamp, orderDirection: desc) {
    id delegator indexer tokens timestamp transactionHash
  }
}`

const networkMetricsQuery = `query {
  graphNetworks(first: 1) {
    delegatorCount
    activeDelegatorCount
  }
}`

// FetchDelegationEvents retrieves the latest deposit and withdrawal events,
// at most limit of each.
func (c *Client) FetchDelegationEvents(ctx context.Context, limit int) (*DelegationEvents, error) {
	var payload struct {
		StakeDelegateds       []DelegationEvent `json:"stakeDelegateds"`
		StakeDelegatedLockeds []DelegationEvent `json:"stakeDelegatedLockeds"`
	}

	err := c.query(ctx, delegationEventsQuery, map[string]any{"first": limit}, &payload)
	if err != nil {
		return nil, err
	}

	if payload.StakeDelegateds == nil || payload.StakeDelegatedLockeds == nil {
		return nil, fmt.Errorf("%w: missing event collections", ErrMalformedResponse)
	}

	return &DelegationEvents{
		Deposits:    payload.StakeDelegateds,
		Withdrawals: payload.StakeDelegatedLockeds,
	}, nil
}

// FetchNetworkMetrics retrieves delegator counters for the network.
// A missing counter field is tolerated and left empty; a missing
// graphNetworks entity is a malformed response.
func (c *Client) FetchNetworkMetrics(ctx context.Context) (*NetworkMetrics, error) {
	var payload struct {
		GraphNetworks []struct {
			DelegatorCount       string `json:"delegatorCount"`
			ActiveDelegatorCount string `json:"activeDelegatorCount"`
		} `json:"graphNetworks"`
	}

	err := c.query(ctx, networkMetricsQuery, nil, &payload)
	if err != nil {
		return nil, err
	}

	if len(payload.GraphNetworks) == 0 {
		return nil, fmt.Errorf("%w: no graphNetworks entity", ErrMalformedResponse)
	}

	return &NetworkMetrics{
		DelegatorCount:       payload.GraphNetworks[0].DelegatorCount,
		ActiveDelegatorCount: payload.GraphNetworks[0].ActiveDelegatorCount,
	}, nil
}

// query posts a GraphQL document and decodes the data envelope into out
func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, envelope.Errors[0].Message)
	}

	if len(envelope.Data) == 0 {
		return fmt.Errorf("%w: missing data envelope", ErrMalformedResponse)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return nil
}
