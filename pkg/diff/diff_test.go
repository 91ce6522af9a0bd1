package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights/pkg/entities"
	"insights/pkg/utils"
)

func TestProducts_NoChanges(t *testing.T) {
	p := entities.ProductInfo{ProductName: "Mug", Price: "$9", Rating: 4.5, Pros: []string{"sturdy"}}
	d := Products(p, p)

	assert.True(t, d.Empty())
	var b strings.Builder
	d.Print(&b)
	assert.Equal(t, "no changes\n", b.String())
}

func TestProducts_FieldsAndLists(t *testing.T) {
	oldP := entities.ProductInfo{
		ProductName: "Steel Mug",
		Price:       "$12",
		Review:      "Keeps coffee hot for hours.",
		Pros:        []string{"Keeps drinks hot", "Dishwasher safe"},
		Cons:        []string{"Heavy"},
		Rating:      4.2,
	}
	newP := entities.ProductInfo{
		ProductName: "Steel Mug",
		Price:       "$10",
		Review:      "Keeps coffee warm for hours.",
		Pros:        []string{"Keeps drinks very hot", "Lifetime warranty"},
		Cons:        []string{"Heavy"},
		Rating:      4.2,
	}

	d := Products(oldP, newP)
	require.False(t, d.Empty())

	require.Len(t, d.Fields, 1)
	assert.Equal(t, "price", d.Fields[0].Field)

	require.NotNil(t, d.Review)
	var ins, del []string
	for _, w := range d.Review.Deltas {
		switch w.Op {
		case utils.WordInsert:
			ins = append(ins, w.Text)
		case utils.WordDelete:
			del = append(del, w.Text)
		}
	}
	assert.Equal(t, []string{"warm"}, ins)
	assert.Equal(t, []string{"hot"}, del)

	assert.Equal(t, []string{"Lifetime warranty"}, d.Pros.Added)
	assert.Equal(t, []string{"Dishwasher safe"}, d.Pros.Removed)
	require.Len(t, d.Pros.Edited, 1)
	assert.Equal(t, "Keeps drinks very hot", d.Pros.Edited[0].New)
	assert.True(t, d.Cons.Empty())

	var b strings.Builder
	d.Print(&b)
	out := b.String()
	assert.Contains(t, out, "price: ")
	assert.Contains(t, out, "[+] ")
	assert.Contains(t, out, "Lifetime warranty")
	assert.NotContains(t, out, "Cons")
}

func TestCoalesceRuns(t *testing.T) {
	got := coalesceRuns(utils.DiffWords("a b c", "a x c"))
	assert.Equal(t, []utils.WordDelta{
		{Op: utils.WordEqual, Text: "a "},
		{Op: utils.WordDelete, Text: "b"},
		{Op: utils.WordInsert, Text: "x"},
		{Op: utils.WordEqual, Text: " c"},
	}, got)
}
