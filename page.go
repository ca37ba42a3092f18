package contentstore

import "golang.org/x/exp/constraints"

const DefaultLimit = 50

// Page is the pagination window every list-style read accepts. Bad input
// never fails a request: negative or unparsable values are coerced to the
// defaults before the window is applied.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	p.Offset = max(p.Offset, 0)
	return p
}

// Paged is a contiguous slice of an ordered result list. HasMore follows
// offset+limit < total, so a final short page reports HasMore=false.
type Paged[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

func Paginate[T any](items []T, p Page) Paged[T] {
	p = p.normalized()
	total := len(items)
	lo := min(p.Offset, total)
	hi := min(lo+p.Limit, total)
	return Paged[T]{
		Items:   items[lo:hi],
		Total:   total,
		HasMore: p.Offset+p.Limit < total,
	}
}

func max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
