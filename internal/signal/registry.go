package signal

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry is a bounded, time-ordered log of emitted signals. Subscribers
// receive every append over their own buffered channel in FIFO order; a slow
// subscriber drops signals rather than blocking the producer.
type Registry struct {
	mu      sync.Mutex
	depth   int
	entries []Signal
	subs    []chan Signal
	log     zerolog.Logger
}

// NewRegistry builds a registry keeping at most depth signals.
func NewRegistry(depth int, log zerolog.Logger) *Registry {
	if depth <= 0 {
		depth = 100
	}
	return &Registry{depth: depth, log: log}
}

// Append records s and fans it out to subscribers.
func (r *Registry) Append(s Signal) {
	r.mu.Lock()
	r.entries = append(r.entries, s)
	if len(r.entries) > r.depth {
		r.entries = r.entries[len(r.entries)-r.depth:]
	}
	subs := make([]chan Signal, len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
			r.log.Warn().Str("id", s.ID).Msg("subscriber full, signal dropped")
		}
	}
}

// Subscribe registers a consumer with the given channel buffer.
func (r *Registry) Subscribe(buffer int) <-chan Signal {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Signal, buffer)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

// Recent returns up to n signals, newest last.
func (r *Registry) Recent(n int) []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]Signal, n)
	copy(out, r.entries[len(r.entries)-n:])
	return out
}

// Len reports how many signals are retained.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
