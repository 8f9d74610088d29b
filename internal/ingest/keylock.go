package ingest

import (
	"sync"

	"github.com/yungbote/paissadb/internal/types"
)

// plotLocks hands out one mutex per plot identity so observations for
// the same plot serialize while different plots proceed in parallel.
// Entries are never evicted; the key space is bounded by the catalog's
// ward and plot counts.
type plotLocks struct {
	mu sync.Mutex
	m  map[types.PlotIdentity]*sync.Mutex
}

func (l *plotLocks) get(id types.PlotIdentity) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = make(map[types.PlotIdentity]*sync.Mutex)
	}
	mu, ok := l.m[id]
	if !ok {
		mu = &sync.Mutex{}
		l.m[id] = mu
	}
	return mu
}
