package market

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"quantdesk/internal/metrics"
)

// Store holds the latest snapshot per symbol. The update tick is the sole
// writer; detector ticks read value copies and never observe partial state.
type Store struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
	log   zerolog.Logger
}

// NewStore returns an empty store writing validation failures to log.
func NewStore(log zerolog.Logger) *Store {
	return &Store{snaps: make(map[string]Snapshot), log: log}
}

// Update replaces the prior snapshot for s.Symbol. Invalid snapshots are
// dropped so the store keeps the last valid state, and the error is returned
// for the caller to count.
func (st *Store) Update(s Snapshot) error {
	if err := s.Validate(); err != nil {
		metrics.SnapshotsRejected.WithLabelValues(s.Symbol).Inc()
		st.log.Warn().Err(err).Str("sym", s.Symbol).Msg("snapshot rejected, keeping last valid")
		return err
	}
	st.mu.Lock()
	st.snaps[s.Symbol] = s
	st.mu.Unlock()
	metrics.TicksTotal.WithLabelValues(s.Symbol).Inc()
	return nil
}

// Get returns the latest snapshot for symbol, if any.
func (st *Store) Get(symbol string) (Snapshot, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.snaps[symbol]
	return s, ok
}

// All returns value copies of every snapshot, sorted by symbol for determinism.
func (st *Store) All() []Snapshot {
	st.mu.RLock()
	out := make([]Snapshot, 0, len(st.snaps))
	for _, s := range st.snaps {
		out = append(out, s)
	}
	st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Prices returns the current price per symbol, used to mark the ledger.
func (st *Store) Prices() map[string]float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make(map[string]float64, len(st.snaps))
	for sym, s := range st.snaps {
		out[sym] = s.Price
	}
	return out
}
