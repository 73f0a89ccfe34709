// Package strategy contains the detector implementations and the metadata
// book tracking their activation and accumulated performance.
package strategy

import (
	"sync"

	"quantdesk/internal/market"
	"quantdesk/internal/signal"
)

// Detector evaluates one symbol's snapshot and emits at most one signal.
type Detector interface {
	Name() string
	Detect(snap market.Snapshot) *signal.Signal
}

// RiskLevel grades how aggressive a strategy is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Performance accumulates trade outcomes for a strategy. Counters only grow
// while the process runs.
type Performance struct {
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	TotalReturn   float64 `json:"totalReturn"`
	SharpeRatio   float64 `json:"sharpeRatio"`
}

// Strategy is the admin-visible metadata for one detector.
type Strategy struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	RiskLevel    RiskLevel   `json:"riskLevel"`
	TargetReturn float64     `json:"targetReturn"`
	MaxDrawdown  float64     `json:"maxDrawdown"`
	Active       bool        `json:"active"`
	Performance  Performance `json:"performance"`
}

// Book holds strategy metadata keyed by name, preserving registration order.
type Book struct {
	mu      sync.RWMutex
	entries map[string]*Strategy
	order   []string
}

// NewBook registers the given strategies.
func NewBook(strategies ...Strategy) *Book {
	b := &Book{entries: make(map[string]*Strategy, len(strategies))}
	for _, s := range strategies {
		s := s
		if _, dup := b.entries[s.Name]; dup {
			continue
		}
		b.entries[s.Name] = &s
		b.order = append(b.order, s.Name)
	}
	return b
}

// SetActive toggles a strategy; false means the name is unknown.
func (b *Book) SetActive(name string, active bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.entries[name]
	if !ok {
		return false
	}
	s.Active = active
	return true
}

// IsActive reports whether the named strategy should run.
func (b *Book) IsActive(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.entries[name]
	return ok && s.Active
}

// RecordTrade extends the named strategy's performance counters.
func (b *Book) RecordTrade(name string, ret float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.entries[name]
	if !ok {
		return
	}
	s.Performance.TotalTrades++
	if ret > 0 {
		s.Performance.WinningTrades++
	}
	s.Performance.TotalReturn += ret
}

// List returns value copies in registration order.
func (b *Book) List() []Strategy {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Strategy, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.entries[name])
	}
	return out
}

// Defaults builds the canonical book and detector set. The seed drives the
// arbitrage scanner's synthetic venue spread.
func Defaults(seed int64) (*Book, []Detector) {
	book := NewBook(
		Strategy{
			Name:         NameMomentumBreakout,
			Description:  "Buys confirmed breakouts above the upper Bollinger band on high volume",
			RiskLevel:    RiskMedium,
			TargetReturn: 0.08,
			MaxDrawdown:  0.05,
			Active:       true,
		},
		Strategy{
			Name:         NameMeanReversion,
			Description:  "Buys oversold dips below the lower Bollinger band",
			RiskLevel:    RiskLow,
			TargetReturn: 0.04,
			MaxDrawdown:  0.03,
			Active:       true,
		},
		Strategy{
			Name:         NameArbitrageScanner,
			Description:  "Captures synthetic cross-venue spreads above 0.2%",
			RiskLevel:    RiskHigh,
			TargetReturn: 0.005,
			MaxDrawdown:  0.001,
			Active:       true,
		},
	)
	detectors := []Detector{
		MomentumBreakout{},
		MeanReversion{},
		NewArbitrageScanner(seed),
	}
	return book, detectors
}
