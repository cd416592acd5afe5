// Package dedup decides which scraped case titles are new enough to process.
package dedup

import "sync"

// Gate is the run's title set: titles already persisted plus titles accepted
// during this run. It is safe for concurrent use.
type Gate struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	accepted []string
}

// NewGate seeds the gate with the titles already in storage. The stored set is
// copied; the caller's map is never modified.
func NewGate(stored map[string]struct{}) *Gate {
	seen := make(map[string]struct{}, len(stored))
	for title := range stored {
		seen[title] = struct{}{}
	}
	return &Gate{seen: seen}
}

// Accept reports whether title has not been seen before and records it.
func (g *Gate) Accept(title string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[title]; ok {
		return false
	}
	g.seen[title] = struct{}{}
	g.accepted = append(g.accepted, title)
	return true
}

// Accepted lists titles accepted during this run, in acceptance order.
func (g *Gate) Accepted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, len(g.accepted))
	copy(out, g.accepted)
	return out
}
