// Package ens resolves Ethereum addresses to ENS names via the ENS subgraph.
package ens

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/ratelimit"
)

// Sentinel errors for lookup failures
var (
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed ENS response")
)

// DefaultLookupsPerSecond paces subgraph lookups so a large enrichment
// fan-out stays polite to the gateway.
const DefaultLookupsPerSecond = 20

// Client represents an ENS subgraph client
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    ratelimit.Limiter
}

// NewClient creates a client with default timeout and lookup pacing
func NewClient(baseURL string) *Client {
	return NewClientWithHTTP(
		&http.Client{Timeout: 15 * time.Second},
		baseURL,
		DefaultLookupsPerSecond,
	)
}

// NewClientWithHTTP creates a client with a custom HTTP client, base URL and
// lookup rate. lookupsPerSecond <= 0 disables pacing.
func NewClientWithHTTP(httpClient *http.Client, baseURL string, lookupsPerSecond int) *Client {
	limiter := ratelimit.NewUnlimited()
	if lookupsPerSecond > 0 {
		limiter = ratelimit.New(lookupsPerSecond)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    limiter,
	}
}

const lookupQuery = `query($address: String!) {
  domains(first: 1, where: {resolvedAddress: $address}) {
    name
  }
}`

// LookupName returns the first ENS name resolving to the given address,
// or "" when the address has none. The address is lower-cased before the
// query since the subgraph stores checksummed addresses in lower case.
func (c *Client) LookupName(ctx context.Context, address string) (string, error) {
	c.limiter.Take()

	body, err := json.Marshal(map[string]any{
		"query": lookupQuery,
		"variables": map[string]any{
			"address": strings.ToLower(address),
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			Domains []struct {
				Name string `json:"name"`
			} `json:"domains"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(envelope.Data.Domains) == 0 {
		return "", nil
	}
	return envelope.Data.Domains[0].Name, nil
}
