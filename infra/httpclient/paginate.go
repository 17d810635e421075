package httpclient

import "context"

// PageFunc fetches one page of results. Pages are numbered from 1.
type PageFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// Paginate aggregates pages until one comes back empty or shorter than the
// requested page size. The first failed page aborts with the items gathered
// so far discarded, leaving the fallback decision to the caller.
func Paginate[T any](ctx context.Context, fetch PageFunc[T], pageSize int) ([]T, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	var results []T
	for page := 1; ; page++ {
		items, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		results = append(results, items...)
		if len(items) < pageSize {
			break
		}
	}
	return results, nil
}
