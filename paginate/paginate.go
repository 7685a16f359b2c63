// Package paginate turns page-at-a-time vendor endpoints into complete
// result sets.
package paginate

import (
	"context"
	"fmt"
)

// MaxPages is the hard ceiling on fetched pages. It guarantees termination
// against vendors that never report a total and never return a short page.
const MaxPages = 100

// DefaultPageSize is used when the caller passes a non-positive page size.
const DefaultPageSize = 100

// NoTotal is returned by a PageFunc when the vendor does not report a
// reliable total row count.
const NoTotal = -1

// PageFunc fetches one page of items starting at offset. total is the
// vendor-declared total row count, or NoTotal when the vendor does not
// report one.
type PageFunc[T any] func(ctx context.Context, offset, limit int) (items []T, total int, err error)

// CollectAll drives fetch until the result set is complete.
//
// Termination, whichever comes first:
//   - the accumulated count reaches a vendor-declared total
//   - a page comes back shorter than the page size (last page)
//   - MaxPages pages have been fetched
//
// The short-page heuristic can under-fetch when a vendor's final page is
// exactly full and no total is reported; callers needing exact completeness
// must use an endpoint that declares totals.
func CollectAll[T any](ctx context.Context, pageSize int, fetch PageFunc[T]) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []T
	for page := 0; page < MaxPages; page++ {
		items, total, err := fetch(ctx, page*pageSize, pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page+1, err)
		}
		all = append(all, items...)

		if total >= 0 && len(all) >= total {
			break
		}
		if len(items) < pageSize {
			break
		}
	}
	return all, nil
}
