package correlation

import (
	"context"
	"sync"

	"github.com/alertlens/alertlens/internal/logger"
	"github.com/alertlens/alertlens/internal/nerdgraph"
)

// DefaultEnrichConcurrency caps simultaneous in-flight entity resolutions.
// Condition sets can run into the hundreds; unbounded fan-out risks
// rate-limiting from the remote API.
const DefaultEnrichConcurrency = 5

// UnknownLabel is the sentinel used when neither the resolved nor the
// declared entity carries a usable value.
const UnknownLabel = "unknown"

// ResolveFunc looks up authoritative entity metadata by GUID.
type ResolveFunc func(ctx context.Context, guid string) (*nerdgraph.EntityRef, error)

// Enricher merges resolved entity metadata into alert conditions with a
// fixed concurrency ceiling. Output preserves input order and cardinality
// regardless of which resolution completes first; a failed resolution
// isolates to its own item and falls back to the declared fields.
type Enricher struct {
	resolve ResolveFunc
	limit   int
	log     logger.Logger
}

// NewEnricher creates an enricher with the given resolver and ceiling.
// A non-positive limit falls back to DefaultEnrichConcurrency.
func NewEnricher(resolve ResolveFunc, limit int, log logger.Logger) *Enricher {
	if limit <= 0 {
		limit = DefaultEnrichConcurrency
	}
	return &Enricher{resolve: resolve, limit: limit, log: log}
}

// EnrichConditions resolves each condition's effective GUID and attaches
// the result as ResolvedEntity. The returned slice has the same length and
// order as the input even when every resolution fails.
func (e *Enricher) EnrichConditions(ctx context.Context, conds []nerdgraph.AlertCondition) []nerdgraph.AlertCondition {
	out := make([]nerdgraph.AlertCondition, len(conds))
	sem := make(chan struct{}, e.limit)
	var wg sync.WaitGroup

	for i := range conds {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = e.enrichOne(ctx, conds[i])
		}(i)
	}
	wg.Wait()
	return out
}

// enrichOne resolves a single condition. Each resolution carries its own
// timeout inside the resolver; a cancelled or failed lookup never aborts
// sibling resolutions.
func (e *Enricher) enrichOne(ctx context.Context, cond nerdgraph.AlertCondition) nerdgraph.AlertCondition {
	guid := EffectiveGUID(&cond)
	resolved := &nerdgraph.EntityRef{GUID: guid}

	if guid != "" {
		ent, err := e.resolve(ctx, guid)
		switch {
		case err != nil:
			e.log.Debug("entity resolution failed, using declared fields",
				logger.String("condition", cond.Name),
				logger.String("guid", guid),
				logger.Error(err))
		case ent != nil:
			resolved.Name = ent.Name
			resolved.Type = ent.Type
			resolved.Domain = ent.Domain
		}
	}

	// Resolved values supersede declared ones; declared values only fill
	// gaps the lookup left empty.
	if cond.Entity != nil {
		if resolved.Name == "" {
			resolved.Name = cond.Entity.Name
		}
		if resolved.Type == "" {
			resolved.Type = cond.Entity.Type
		}
		if resolved.Domain == "" {
			resolved.Domain = cond.Entity.Domain
		}
	}
	if resolved.Name == "" {
		resolved.Name = UnknownLabel
	}
	if resolved.Type == "" {
		resolved.Type = UnknownLabel
	}

	cond.ResolvedEntity = resolved
	return cond
}
