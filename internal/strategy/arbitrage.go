package strategy

import (
	"fmt"
	"math/rand"
	"sync"

	"quantdesk/internal/market"
	"quantdesk/internal/signal"
)

// NameArbitrageScanner is the registry key for the spread scanner.
const NameArbitrageScanner = "Arbitrage Scanner"

const minArbSpread = 0.002 // 0.2%

// SpreadSource reports the current cross-venue spread fraction for a symbol.
type SpreadSource func(symbol string) float64

// ArbitrageScanner fires a BUY whenever the observed cross-venue spread
// exceeds 0.2%. Without a real second venue the spread is synthetic, sampled
// from the injected source.
type ArbitrageScanner struct {
	spread SpreadSource
}

// NewArbitrageScanner builds a scanner with a seeded synthetic spread source.
func NewArbitrageScanner(seed int64) ArbitrageScanner {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))
	return ArbitrageScanner{spread: func(string) float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64() * 0.005
	}}
}

// NewArbitrageScannerFrom builds a scanner over an explicit spread source.
func NewArbitrageScannerFrom(src SpreadSource) ArbitrageScanner {
	return ArbitrageScanner{spread: src}
}

func (ArbitrageScanner) Name() string { return NameArbitrageScanner }

// Detect samples the spread and emits a signal when it clears the floor.
func (a ArbitrageScanner) Detect(snap market.Snapshot) *signal.Signal {
	spread := a.spread(snap.Symbol)
	if spread <= minArbSpread {
		return nil
	}

	target := snap.Price * (1 + spread)
	stop := snap.Price * 0.999

	return &signal.Signal{
		ID:          signal.MakeID(NameArbitrageScanner, snap.Symbol, snap.Ts),
		Symbol:      snap.Symbol,
		Action:      signal.Buy,
		Confidence:  95,
		Strength:    95,
		EntryPrice:  snap.Price,
		TargetPrice: target,
		StopLoss:    stop,
		RiskReward:  spread / 0.001,
		Timeframe:   signal.TF1m,
		Strategy:    NameArbitrageScanner,
		Reasoning: []string{
			fmt.Sprintf("cross-venue spread %.3f%% above 0.2%% floor", spread*100),
		},
		Ts: snap.Ts,
	}
}
