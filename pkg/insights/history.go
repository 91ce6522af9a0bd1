package insights

import (
	"errors"
	"os"
	"slices"
	"sync"

	"insights/pkg/schema"
	"insights/pkg/utils"
)

const DefaultHistoryLimit = 200

// History keeps the most recent insights, newest first.
type History struct {
	mu    sync.RWMutex
	items []schema.Insight
	limit int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Add(in schema.Insight) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = slices.Insert(h.items, 0, in)
	if len(h.items) > h.limit {
		h.items = h.items[:h.limit]
	}
}

func (h *History) Get(id string) (schema.Insight, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	i := slices.IndexFunc(h.items, func(in schema.Insight) bool { return in.ID == id })
	if i == -1 {
		return schema.Insight{}, false
	}
	return h.items[i], true
}

// Latest returns the newest insight for url.
func (h *History) Latest(url string) (schema.Insight, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	i := slices.IndexFunc(h.items, func(in schema.Insight) bool { return in.URL == url })
	if i == -1 {
		return schema.Insight{}, false
	}
	return h.items[i], true
}

// Recent returns up to n insights, newest first.
func (h *History) Recent(n int) []schema.Insight {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n = min(max(n, 0), len(h.items))
	return slices.Clone(h.items[:n])
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Load replaces the history with the contents of path. A missing file is not an error.
func (h *History) Load(path string) error {
	items, err := utils.Load[[]schema.Insight](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = items
	if len(h.items) > h.limit {
		h.items = h.items[:h.limit]
	}
	return nil
}

func (h *History) Save(path string) error {
	h.mu.RLock()
	items := slices.Clone(h.items)
	h.mu.RUnlock()
	return utils.Save(path, items)
}
