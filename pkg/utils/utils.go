package utils

import (
	"encoding/json"
	"maps"
	"strings"
	"sync"
	"unicode/utf8"

	"insights/pkg/pool"
)

// ErrJSON produces a standard JSON error response.
func ErrJSON(msg string) map[string]any {
	return map[string]any{
		"success": false,
		"error":   msg,
	}
}

// PrettyJSON marshals with indentation.
func PrettyJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

type levRows struct {
	prev []int
	curr []int
}

func (l *levRows) Reset() {
	clear(l.prev)
	clear(l.curr)
}

var rowsPool = pool.New(func() *levRows {
	return &levRows{
		prev: make([]int, 0, 256),
		curr: make([]int, 0, 256),
	}
})

// Levenshtein returns the edit distance between two strings.
func Levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(br) > len(ar) {
		ar, br = br, ar
	}
	al, bl := len(ar), len(br)
	if bl == 0 {
		return al
	}

	rows := rowsPool.Get()
	defer rowsPool.Put(rows)
	rows.prev = grow(rows.prev, bl+1)
	rows.curr = grow(rows.curr, bl+1)

	for j := range rows.prev {
		rows.prev[j] = j
	}

	for i := 1; i <= al; i++ {
		rows.curr[0] = i
		for j := 1; j <= bl; j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			rows.curr[j] = min(rows.prev[j]+1, rows.curr[j-1]+1, rows.prev[j-1]+cost)
		}
		rows.prev, rows.curr = rows.curr, rows.prev
	}

	return rows.prev[bl]
}

func grow(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

// Similarity returns a float between 0 and 1 (1 = identical), ignoring case
// and surrounding whitespace.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	maxLen := float64(max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)))
	return 1.0 - float64(Levenshtein(a, b))/maxLen
}

// LimitStr truncates s to n runes, appending "..." when cut.
func LimitStr(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// CleanJSON extracts the JSON object from a model reply: reasoning blocks,
// markdown fences and any prose around the outermost braces are dropped.
func CleanJSON(s string) string {
	if idx := strings.LastIndex(s, "</think>"); idx != -1 {
		s = s[idx+len("</think>"):]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		lines = lines[1:]
		if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
			lines = lines[:n-1]
		}
		s = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	if j := strings.LastIndex(s, "}"); j != -1 && j < len(s)-1 {
		s = s[:j+1]
	}
	return s
}

// SyncMap is a map guarded by a RWMutex.
type SyncMap[M ~map[K]V, K comparable, V any] struct {
	mu   sync.RWMutex
	data M
}

func NewSyncMap[M ~map[K]V, K comparable, V any]() *SyncMap[M, K, V] {
	return &SyncMap[M, K, V]{
		data: make(M),
	}
}

func (m *SyncMap[M, K, V]) Load(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *SyncMap[M, K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *SyncMap[M, K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *SyncMap[M, K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Map returns a snapshot copy of the contents.
func (m *SyncMap[M, K, V]) Map() M {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}
