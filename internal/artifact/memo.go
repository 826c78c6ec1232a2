package artifact

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo holds process-local results keyed by the full argument tuple of a call.
// Concurrent callers for one key share a single computation. Failed calls are
// not remembered. A key never invalidates another key; Reset clears all.
type Memo struct {
	group   singleflight.Group
	mu      sync.RWMutex
	results map[string]any
}

// NewMemo returns an empty memo.
func NewMemo() *Memo {
	return &Memo{results: make(map[string]any)}
}

// Key joins call arguments into a memo key.
func Key(parts ...any) string {
	fields := make([]string, len(parts))
	for i, p := range parts {
		fields[i] = fmt.Sprint(p)
	}
	return strings.Join(fields, "\x1f")
}

func (m *Memo) lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.results[key]
	return v, ok
}

// Do returns the remembered value for key, computing it with fn once. fn must
// not call Do with the same key.
func (m *Memo) Do(key string, fn func() (any, error)) (any, error) {
	if v, ok := m.lookup(key); ok {
		return v, nil
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.results[key] = v
		m.mu.Unlock()
		return v, nil
	})
	return v, err
}

// Len returns the number of remembered keys.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results)
}

// Reset forgets every remembered value.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.results = make(map[string]any)
	m.mu.Unlock()
}

// Remember is the typed form of Memo.Do.
func Remember[T any](m *Memo, key string, fn func() (T, error)) (T, error) {
	v, err := m.Do(key, func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// CloneMultiMapping copies m and each of its value slices. Remembered values
// are shared between callers, so exported accessors hand out copies.
func CloneMultiMapping(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}
