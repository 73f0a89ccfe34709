package strategy

import (
	"fmt"
	"math"

	"quantdesk/internal/market"
	"quantdesk/internal/signal"
)

// NameMomentumBreakout is the registry key for the breakout detector.
const NameMomentumBreakout = "Momentum Breakout"

const momentumVolumeFloor = 1_000_000

// MomentumBreakout fires a BUY when price clears the upper Bollinger band on
// elevated volume while RSI still has room below overbought.
type MomentumBreakout struct{}

func (MomentumBreakout) Name() string { return NameMomentumBreakout }

// Detect applies the breakout admission rule to one snapshot.
func (MomentumBreakout) Detect(snap market.Snapshot) *signal.Signal {
	if !(snap.Price > snap.Bollinger.Upper && snap.Volume24h > momentumVolumeFloor && snap.RSI < 70) {
		return nil
	}

	confidence := math.Min(95, 60+snap.RSI/70*35)
	target := snap.Price * 1.08
	stop := snap.Price * 0.95

	return &signal.Signal{
		ID:          signal.MakeID(NameMomentumBreakout, snap.Symbol, snap.Ts),
		Symbol:      snap.Symbol,
		Action:      signal.Buy,
		Confidence:  confidence,
		Strength:    85,
		EntryPrice:  snap.Price,
		TargetPrice: target,
		StopLoss:    stop,
		RiskReward:  signal.RiskReward(signal.Buy, snap.Price, target, stop),
		Timeframe:   signal.TF1h,
		Strategy:    NameMomentumBreakout,
		Reasoning: []string{
			"price broke above upper Bollinger band",
			fmt.Sprintf("24h volume %.0f above %d floor", snap.Volume24h, momentumVolumeFloor),
			fmt.Sprintf("RSI %.1f below overbought", snap.RSI),
		},
		Ts: snap.Ts,
	}
}
