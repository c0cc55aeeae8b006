// Package resolver maps free-text queries to listed companies and known
// companies to their filed prospectus documents, per market.
//
// Every market resolver is two-tier: a live lookup against the market's
// public search surface, falling back to a curated reference table on any
// failure or empty result. Search never returns an error to callers that
// can tolerate an empty list; ListFilings always yields at least one
// candidate (a placeholder record when no real index is reachable).
package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// maxSearchResults caps the result list surfaced to callers.
const maxSearchResults = 20

// Resolver resolves companies and filings for a single market.
type Resolver interface {
	// Search resolves a free-text query to company identities. A failed
	// live lookup degrades to the curated table; the returned slice may
	// be empty but the call itself never fails.
	Search(ctx context.Context, query string) []models.CompanySearchResult

	// ListFilings returns candidate prospectus documents for a ticker.
	// Markets without a reliable live index return deterministic
	// placeholder records so downstream stages always have a candidate.
	ListFilings(ctx context.Context, ticker string) []models.ProspectusInfo
}

// Registry holds one resolver per supported exchange.
type Registry struct {
	resolvers map[models.Exchange]Resolver
}

// NewRegistry builds the default registry with all five market resolvers.
func NewRegistry() *Registry {
	hkex := NewHKEXResolver()
	return &Registry{
		resolvers: map[models.Exchange]Resolver{
			models.ExchangeHKEX:   hkex,
			models.ExchangeNYSE:   NewSECResolver(models.ExchangeNYSE),
			models.ExchangeNASDAQ: NewSECResolver(models.ExchangeNASDAQ),
			models.ExchangeSSE:    NewChinaResolver(models.ExchangeSSE),
			models.ExchangeSZSE:   NewChinaResolver(models.ExchangeSZSE),
		},
	}
}

// Get returns the resolver for an exchange.
func (r *Registry) Get(exchange models.Exchange) (Resolver, error) {
	res, ok := r.resolvers[exchange]
	if !ok {
		return nil, fmt.Errorf("unsupported exchange: %s", exchange)
	}
	return res, nil
}

// Set replaces the resolver for an exchange. Used by tests to inject fakes.
func (r *Registry) Set(exchange models.Exchange, res Resolver) {
	r.resolvers[exchange] = res
}

// SearchAll fans out the query to every market concurrently. Each branch is
// isolated: a failing or empty market contributes nothing to the aggregate.
// Results are concatenated in the fixed models.AllExchanges order and
// de-duplicated on the (ticker, exchange) pair, first occurrence winning.
func (r *Registry) SearchAll(ctx context.Context, query string) []models.CompanySearchResult {
	slots := make([][]models.CompanySearchResult, len(models.AllExchanges))

	var wg sync.WaitGroup
	for i, exchange := range models.AllExchanges {
		res, ok := r.resolvers[exchange]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, res Resolver) {
			defer wg.Done()
			slots[i] = res.Search(ctx, query)
		}(i, res)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []models.CompanySearchResult
	for _, branch := range slots {
		for _, result := range branch {
			key := result.Ticker + "|" + string(result.Exchange)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, result)
		}
	}

	if len(merged) > maxSearchResults {
		merged = merged[:maxSearchResults]
	}
	return merged
}

// matchesQuery implements the case-insensitive substring match used by all
// curated-table fallbacks: name, ticker, or sector.
func matchesQuery(entry catalogEntry, query string) bool {
	return containsFold(entry.Name, query) ||
		containsFold(entry.Ticker, query) ||
		containsFold(entry.Sector, query)
}
