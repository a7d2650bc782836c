package core

import (
	"sort"
	"sync"

	"ircnames/internal/session"
)

// Results is an append-only collection shared by every session task.
type Results struct {
	mu    sync.Mutex
	items []session.Result
}

// Add appends one record.
func (r *Results) Add(res session.Result) {
	r.mu.Lock()
	r.items = append(r.items, res)
	r.mu.Unlock()
}

// Len returns the number of records.
func (r *Results) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sorted returns a copy of the records ordered by channel label.
func (r *Results) Sorted() []session.Result {
	r.mu.Lock()
	out := make([]session.Result, len(r.items))
	copy(out, r.items)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChannelLabel < out[j].ChannelLabel
	})
	return out
}
