package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The embedded Meta field must not shadow the promoted accessor.
var (
	_ Entity = (*Post)(nil)
	_ Entity = (*Category)(nil)
	_ Entity = (*Tag)(nil)
	_ Entity = (*Car)(nil)
	_ Entity = (*Rental)(nil)
	_ Entity = (*Invoice)(nil)
)

func TestRecReachesEmbeddedMeta(t *testing.T) {
	p := &Post{Meta: Meta{ID: "p1"}, Title: "x"}
	assert.Same(t, &p.Meta, p.Rec())

	p.Rec().ID = "p2"
	assert.Equal(t, "p2", p.ID)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, KindPost, (&Post{}).Kind())
	assert.Equal(t, KindCategory, (&Category{}).Kind())
	assert.Equal(t, KindTag, (&Tag{}).Kind())
	assert.Equal(t, KindCar, (&Car{}).Kind())
	assert.Equal(t, KindRental, (&Rental{}).Kind())
	assert.Equal(t, KindInvoice, (&Invoice{}).Kind())
}
