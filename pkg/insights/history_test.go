package insights

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights/pkg/entities"
	"insights/pkg/schema"
)

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	var ids []string
	for i := range 5 {
		in := schema.NewInsight(fmt.Sprintf("https://shop.example.com/%d", i%2), entities.ProductInfo{ProductName: fmt.Sprint("item ", i)})
		h.Add(in)
		ids = append(ids, in.ID)
	}

	assert.Equal(t, 3, h.Len())
	_, ok := h.Get(ids[0])
	assert.False(t, ok, "oldest entry is evicted")

	got, ok := h.Get(ids[4])
	require.True(t, ok)
	assert.Equal(t, "item 4", got.Product.ProductName)

	latest, ok := h.Latest("https://shop.example.com/1")
	require.True(t, ok)
	assert.Equal(t, ids[3], latest.ID)

	recent := h.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[4], recent[0].ID)
	assert.Equal(t, ids[3], recent[1].ID)
	assert.Len(t, h.Recent(10), 3)
	assert.Empty(t, h.Recent(-1))
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Insights.json")

	h := NewHistory(0)
	in := schema.NewInsight("https://shop.example.com/mug", entities.ProductInfo{
		ProductName: "Steel Mug",
		Pros:        []string{"sturdy"},
		Rating:      4.5,
	})
	h.Add(in)
	require.NoError(t, h.Save(path))

	restored := NewHistory(0)
	require.NoError(t, restored.Load(path))
	got, ok := restored.Get(in.ID)
	require.True(t, ok)
	assert.Equal(t, in.Product, got.Product)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))

	assert.NoError(t, NewHistory(0).Load(filepath.Join(t.TempDir(), "missing.json")))
}
