package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/pdiomede/graph-metrics/feed"
)

// Feed horizons select the merged-feed cap: "recent" keeps the last 100
// events, "full" the last 1000.
const (
	HorizonRecent = "recent"
	HorizonFull   = "full"
)

// Config holds all configuration loaded from environment variables
type Config struct {
	HTTPPort           string        `env:"WEB_HTTP_PORT" envDefault:"8080"`
	HTTPHost           string        `env:"WEB_HTTP_HOST" envDefault:"localhost"`
	NetworkSubgraphURL string        `env:"NETWORK_SUBGRAPH_URL" envDefault:"https://gateway.thegraph.com/api/subgraphs/id/graph-network"`
	ENSSubgraphURL     string        `env:"ENS_SUBGRAPH_URL" envDefault:"https://gateway.thegraph.com/api/subgraphs/id/ens"`
	FeedHorizon        string        `env:"FEED_HORIZON" envDefault:"full"`
	EnrichWorkers      int           `env:"ENRICH_WORKERS" envDefault:"8"`
	ENSLookupsPerSec   int           `env:"ENS_LOOKUPS_PER_SECOND" envDefault:"20"`
	HTTPClientTimeout  time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"30s"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogHumanFriendly   bool          `env:"LOG_HUMAN_FRIENDLY" envDefault:"false"`
}

// New loads all configuration from environment variables
func New() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// FeedCap maps the configured horizon to the merged-feed cap
func (c Config) FeedCap() int {
	if c.FeedHorizon == HorizonRecent {
		return feed.CapRecent
	}
	return feed.CapFull
}
