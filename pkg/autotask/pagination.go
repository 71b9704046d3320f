package autotask

import "context"

// PageFetchFunc fetches one page (1-based) of a query.
type PageFetchFunc[T any] func(ctx context.Context, page int) (*ListResponse[T], error)

// Paginator walks the pages of a query result.
type Paginator[T any] struct {
	fetch PageFetchFunc[T]
	page  int
	done  bool
}

// NewPaginator creates a paginator starting at page 1.
func NewPaginator[T any](fetch PageFetchFunc[T]) *Paginator[T] {
	return &Paginator[T]{fetch: fetch}
}

// Next fetches the next page. It returns nil once the server stops
// advertising more pages.
func (p *Paginator[T]) Next(ctx context.Context) (*ListResponse[T], error) {
	if p.done {
		return nil, nil
	}
	p.page++

	resp, err := p.fetch(ctx, p.page)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.HasNextPage() {
		p.done = true
	}
	return resp, nil
}

// AllPages drains a paginator into one slice.
func AllPages[T any](ctx context.Context, fetch PageFetchFunc[T]) ([]T, error) {
	var all []T
	p := NewPaginator(fetch)
	for {
		resp, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return all, nil
		}
		all = append(all, resp.Items...)
	}
}
