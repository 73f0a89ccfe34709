// Package portfolio is the authoritative ledger of cash and open positions.
// The execution controller is its single writer; everything else reads value
// snapshots.
package portfolio

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"quantdesk/internal/analytics"
)

// Position is the read-only view of a single holding.
type Position struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"averagePrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	UnrealizedPnL float64 `json:"unrealizedPnL"`
	Allocation    float64 `json:"allocation"`
}

// Performance summarizes the ledger's return history.
type Performance struct {
	TotalReturn float64 `json:"totalReturn"`
	DailyReturn float64 `json:"dailyReturn"`
	SharpeRatio float64 `json:"sharpeRatio"`
	MaxDrawdown float64 `json:"maxDrawdown"`
	WinRate     float64 `json:"winRate"`
}

// Snapshot is a consistent view of the whole portfolio.
type Snapshot struct {
	TotalValue  float64             `json:"totalValue"`
	Cash        float64             `json:"cash"`
	Positions   map[string]Position `json:"positions"`
	Performance Performance         `json:"performance"`
}

// Point is one equity observation in the ledger's value history.
type Point struct {
	Ts     time.Time `json:"ts"`
	Equity float64   `json:"equity"`
}

type position struct {
	qty  decimal.Decimal
	avg  decimal.Decimal
	mark float64
}

// Ledger tracks cash and positions with exact decimal arithmetic so
// settlement order can never change the final balances.
type Ledger struct {
	mu           sync.Mutex
	startingCash decimal.Decimal
	cash         decimal.Decimal
	riskFree     float64
	positions    map[string]*position
	history      []Point
}

// ErrInsufficientCash is returned when a settlement would drive cash negative.
var ErrInsufficientCash = errors.New("insufficient cash")

// NewLedger builds a ledger funded with startingCash. riskFree feeds the
// Sharpe figure on snapshots.
func NewLedger(startingCash, riskFree float64) *Ledger {
	cash := decimal.NewFromFloat(startingCash)
	return &Ledger{
		startingCash: cash,
		cash:         cash,
		riskFree:     riskFree,
		positions:    make(map[string]*position),
	}
}

// Settle debits cash by qty×price and upserts the position with a
// volume-weighted average price. Invalid inputs and cash-negative settlements
// are rejected without touching state.
func (l *Ledger) Settle(symbol string, qty, price float64) error {
	if symbol == "" {
		return errors.New("empty symbol")
	}
	if qty <= 0 || math.IsNaN(qty) {
		return errors.New("quantity must be positive")
	}
	if price <= 0 || math.IsNaN(price) {
		return errors.New("price must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	q := decimal.NewFromFloat(qty)
	px := decimal.NewFromFloat(price)
	cost := q.Mul(px)
	if cost.GreaterThan(l.cash) {
		return ErrInsufficientCash
	}

	pos := l.positions[symbol]
	if pos == nil {
		pos = &position{}
		l.positions[symbol] = pos
	}
	newQty := pos.qty.Add(q)
	pos.avg = pos.avg.Mul(pos.qty).Add(cost).Div(newQty)
	pos.qty = newQty
	pos.mark = price
	l.cash = l.cash.Sub(cost)

	l.recordLocked(time.Now())
	return nil
}

// Mark refreshes current prices from the market and appends an equity point.
func (l *Ledger) Mark(prices map[string]float64, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for sym, pos := range l.positions {
		if px, ok := prices[sym]; ok && px > 0 {
			pos.mark = px
		}
	}
	l.recordLocked(at)
}

func (l *Ledger) recordLocked(at time.Time) {
	l.history = append(l.history, Point{Ts: at, Equity: l.equityLocked()})
}

func (l *Ledger) equityLocked() float64 {
	equity, _ := l.cash.Float64()
	for _, pos := range l.positions {
		qty, _ := pos.qty.Float64()
		equity += qty * pos.mark
	}
	return equity
}

// Cash returns the free cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, _ := l.cash.Float64()
	return c
}

// Equity returns cash plus the marked value of every position.
func (l *Ledger) Equity() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.equityLocked()
}

// DailyPnL is equity now minus the earliest equity observed in the trailing
// 24 hours (starting cash when the history is still empty).
func (l *Ledger) DailyPnL(now time.Time) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	base, _ := l.startingCash.Float64()
	cutoff := now.Add(-24 * time.Hour)
	for _, p := range l.history {
		if !p.Ts.Before(cutoff) {
			base = p.Equity
			break
		}
	}
	return l.equityLocked() - base
}

// Returns derives simple period-over-period returns from the equity history.
func (l *Ledger) Returns() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return returnsFrom(l.history)
}

// History returns a copy of the equity observations.
func (l *Ledger) History() []Point {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Point, len(l.history))
	copy(out, l.history)
	return out
}

// Snapshot returns a consistent value copy with allocations and performance
// recomputed against current marks.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.equityLocked()
	cash, _ := l.cash.Float64()
	positions := make(map[string]Position, len(l.positions))
	winners, open := 0, 0
	for sym, pos := range l.positions {
		qty, _ := pos.qty.Float64()
		avg, _ := pos.avg.Float64()
		value := qty * pos.mark
		alloc := 0.0
		if total > 0 {
			alloc = value / total
		}
		unrealized := qty * (pos.mark - avg)
		positions[sym] = Position{
			Symbol:        sym,
			Quantity:      qty,
			AveragePrice:  avg,
			CurrentPrice:  pos.mark,
			UnrealizedPnL: unrealized,
			Allocation:    alloc,
		}
		if qty > 0 {
			open++
			if unrealized > 0 {
				winners++
			}
		}
	}

	rets := returnsFrom(l.history)
	perf := Performance{
		TotalReturn: analytics.TotalReturn(rets),
		SharpeRatio: analytics.Sharpe(rets, l.riskFree),
		MaxDrawdown: analytics.MaxDrawdown(rets),
	}
	if len(rets) > 0 {
		perf.DailyReturn = rets[len(rets)-1]
	}
	if open > 0 {
		perf.WinRate = float64(winners) / float64(open)
	}

	return Snapshot{TotalValue: total, Cash: cash, Positions: positions, Performance: perf}
}

func returnsFrom(history []Point) []float64 {
	if len(history) < 2 {
		return nil
	}
	out := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (history[i].Equity-prev)/prev)
	}
	return out
}
