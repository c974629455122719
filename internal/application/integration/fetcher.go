package integration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/commercesync/backend/internal/domain/integration"
)

// DefaultMaxPages bounds a single collection fetch.
const DefaultMaxPages = 1000

// Pager returns one page of a SOURCE collection.
type Pager interface {
	FetchPage(ctx context.Context, module integration.SyncModule, page int) (*integration.SourcePage, error)
}

// FetchAll retrieves every page of module, starting at page 1, until the
// reported current page reaches the last page. Any page error aborts the
// whole fetch and no partial result is returned.
func FetchAll[E any](ctx context.Context, pager Pager, module integration.SyncModule, maxPages int) ([]E, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var all []E
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("%w: %s exceeds %d pages", integration.ErrPaginationLimit, module, maxPages)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := pager.FetchPage(ctx, module, page)
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", module, page, err)
		}

		var items []E
		if len(res.Data) > 0 && string(res.Data) != "null" {
			if err := json.Unmarshal(res.Data, &items); err != nil {
				return nil, fmt.Errorf("%w: decode %s page %d: %v", integration.ErrSourceInvalidResponse, module, page, err)
			}
		}
		all = append(all, items...)

		if res.IsLast() {
			return all, nil
		}
	}
}
