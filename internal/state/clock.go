package state

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps outbound events with this peer's site ID and a monotonic
// sequence number.
type Clock struct {
	site string
	seq  atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

func (c *Clock) Next() uint64 {
	return c.seq.Add(1)
}

// SeqFilter remembers the highest sequence seen per remote site and rejects
// anything at or below it, so each event is applied at most once and never
// out of order.
type SeqFilter struct {
	mu   sync.Mutex
	last map[string]uint64
}

func NewSeqFilter() *SeqFilter {
	return &SeqFilter{last: make(map[string]uint64)}
}

// Accept records seq for site and reports whether it is new.
func (f *SeqFilter) Accept(site string, seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seq <= f.last[site] {
		return false
	}
	f.last[site] = seq
	return true
}
