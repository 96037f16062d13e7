package feed

import (
	"context"

	"github.com/alitto/pond/v2"
)

// DefaultEnrichWorkers bounds the name-lookup fan-out of one enrichment pass
const DefaultEnrichWorkers = 8

// Enrich returns a copy of the batch with delegator and indexer names
// populated from the resolver.
//
// All distinct addresses referenced by the batch (both roles) are resolved
// on a bounded worker pool, and the whole fan-out is awaited before any
// record is returned: enrichment is one logical step for the caller.
// A per-address failure only leaves that record's name empty.
func Enrich(ctx context.Context, activities []Activity, resolver *Resolver, workers int) []Activity {
	if workers <= 0 {
		workers = DefaultEnrichWorkers
	}

	addresses := distinctAddresses(activities)

	pool := pond.NewPool(workers, pond.WithContext(ctx))
	group := pool.NewGroup()
	for _, addr := range addresses {
		group.Submit(func() {
			resolver.Resolve(ctx, addr)
		})
	}
	_ = group.Wait()
	pool.StopAndWait()

	enriched := make([]Activity, len(activities))
	for i, a := range activities {
		// Cache hits only at this point; no lookups fire here.
		if name, ok := resolver.Resolve(ctx, a.DelegatorAddress); ok {
			a.DelegatorName = name
		}
		if name, ok := resolver.Resolve(ctx, a.IndexerAddress); ok {
			a.IndexerName = name
		}
		enriched[i] = a
	}
	return enriched
}

// distinctAddresses collects each referenced address once, in first-seen order
func distinctAddresses(activities []Activity) []string {
	seen := make(map[string]struct{}, len(activities)*2)
	var addresses []string
	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		addresses = append(addresses, addr)
	}

	for _, a := range activities {
		add(a.DelegatorAddress)
		add(a.IndexerAddress)
	}
	return addresses
}
