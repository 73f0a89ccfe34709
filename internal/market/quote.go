package market

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Quoter produces the next snapshot for a symbol from the previous one.
// Implementations stand in for a market data feed; tests inject deterministic
// ones.
type Quoter interface {
	Quote(prev Snapshot, now time.Time) Snapshot
}

const (
	priceStepPct  = 0.01 // bounded walk per tick
	volumeJitter  = 0.20
	rsiStepMax    = 8.0
	macdStepFrac  = 0.002 // of price
	bandHalfWidth = 0.05
)

// RandomWalk simulates a market by applying a bounded random walk to each
// snapshot field. A fixed seed reproduces the full price path.
type RandomWalk struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomWalk builds a simulated quoter from the given seed.
func NewRandomWalk(seed int64) *RandomWalk {
	return &RandomWalk{rng: rand.New(rand.NewSource(seed))}
}

// Quote applies one walk step to prev.
func (w *RandomWalk) Quote(prev Snapshot, now time.Time) Snapshot {
	w.mu.Lock()
	step := w.symmetric(priceStepPct)
	volStep := w.symmetric(volumeJitter)
	rsiStep := w.symmetric(rsiStepMax)
	macdStep := w.symmetric(macdStepFrac)
	w.mu.Unlock()

	price := prev.Price * (1 + step)
	next := Snapshot{
		Symbol:    prev.Symbol,
		Price:     price,
		Volume24h: math.Max(0, prev.Volume24h*(1+volStep)),
		High24h:   math.Max(prev.High24h, price),
		Low24h:    math.Min(prev.Low24h, price),
		Change24h: prev.Change24h + step*100,
		MarketCap: prev.MarketCap * (1 + step),
		RSI:       clamp(prev.RSI+rsiStep, 0, 100),
		MACD:      prev.MACD + prev.Price*macdStep,
		Bollinger: bandsAround(price),
		Ts:        now,
	}
	return next
}

func (w *RandomWalk) symmetric(scale float64) float64 {
	return (w.rng.Float64()*2 - 1) * scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
