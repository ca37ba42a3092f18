package contentstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPaginate_Windows(t *testing.T) {
	cases := []struct {
		name    string
		total   int
		page    Page
		items   int
		first   int
		hasMore bool
	}{
		{"defaults", 120, Page{}, 50, 0, true},
		{"middle page", 120, Page{Limit: 50, Offset: 50}, 50, 50, true},
		{"final short page", 120, Page{Limit: 50, Offset: 100}, 20, 100, false},
		{"exact boundary", 100, Page{Limit: 50, Offset: 50}, 50, 50, false},
		{"offset past end", 10, Page{Limit: 50, Offset: 100}, 0, 0, false},
		{"empty", 0, Page{}, 0, 0, false},
		{"negative coerced", 120, Page{Limit: -1, Offset: -5}, 50, 0, true},
		{"zero limit coerced", 7, Page{Limit: 0, Offset: 0}, 7, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Paginate(seq(c.total), c.page)
			assert.Len(t, got.Items, c.items)
			assert.Equal(t, c.total, got.Total)
			assert.Equal(t, c.hasMore, got.HasMore)
			if c.items > 0 {
				assert.Equal(t, c.first, got.Items[0])
			}
		})
	}
}

func TestPage_Normalized(t *testing.T) {
	p := Page{Limit: -3, Offset: -9}.normalized()
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = Page{Limit: 10, Offset: 20}.normalized()
	assert.Equal(t, Page{Limit: 10, Offset: 20}, p)
}
