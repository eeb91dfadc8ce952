package nerdgraph

import (
	"context"

	"github.com/alertlens/alertlens/internal/logger"
)

// DefaultMaxPages caps cursor-driven collection. The cap exists to guard
// against a remote bug that returns the same cursor forever; hitting it
// means the accumulated results are partial.
const DefaultMaxPages = 50

// Page is one page of a remote collection: zero or more items plus either
// the next cursor or an explicit absence of one.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// FetchFunc retrieves one page for the given cursor. The first call
// receives an empty cursor. Returning a nil page (or an error) marks the
// collection as exhausted or unavailable; items already accumulated are
// kept.
type FetchFunc[T any] func(ctx context.Context, cursor string) (*Page[T], error)

// CollectAll drains a paginated remote collection into a single slice,
// concatenating items in page-arrival order. Pagination failures stop
// collection and return the partial accumulation; they are logged, never
// surfaced as errors. All loop state is local; nothing accumulates at
// package level.
func CollectAll[T any](ctx context.Context, log logger.Logger, maxPages int, fetch FetchFunc[T]) []T {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var items []T
	cursor := ""
	for n := 0; n < maxPages; n++ {
		page, err := fetch(ctx, cursor)
		if err != nil {
			log.Warn("pagination stopped early, returning partial results",
				logger.Int("pages", n),
				logger.Int("items", len(items)),
				logger.Error(err))
			return items
		}
		if page == nil {
			return items
		}
		items = append(items, page.Items...)
		if page.NextCursor == "" {
			return items
		}
		if page.NextCursor == cursor {
			log.Warn("pagination cursor did not advance, returning partial results",
				logger.Int("pages", n+1),
				logger.Int("items", len(items)))
			return items
		}
		cursor = page.NextCursor
	}

	log.Warn("pagination page cap reached, results may be partial",
		logger.Int("max_pages", maxPages),
		logger.Int("items", len(items)))
	return items
}
