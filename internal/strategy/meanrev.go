package strategy

import (
	"fmt"
	"math"

	"quantdesk/internal/market"
	"quantdesk/internal/signal"
)

// NameMeanReversion is the registry key for the reversion detector.
const NameMeanReversion = "Mean Reversion"

// MeanReversion fires a BUY when a symbol is oversold and trading below its
// lower Bollinger band, targeting a snap back to the middle band.
type MeanReversion struct{}

func (MeanReversion) Name() string { return NameMeanReversion }

// Detect applies the oversold admission rule to one snapshot.
func (MeanReversion) Detect(snap market.Snapshot) *signal.Signal {
	if !(snap.RSI < 30 && snap.Price < snap.Bollinger.Lower) {
		return nil
	}

	confidence := math.Min(90, 50+(30-snap.RSI)*2)
	target := snap.Bollinger.Middle
	stop := snap.Price * 0.97

	return &signal.Signal{
		ID:          signal.MakeID(NameMeanReversion, snap.Symbol, snap.Ts),
		Symbol:      snap.Symbol,
		Action:      signal.Buy,
		Confidence:  confidence,
		Strength:    70,
		EntryPrice:  snap.Price,
		TargetPrice: target,
		StopLoss:    stop,
		RiskReward:  signal.RiskReward(signal.Buy, snap.Price, target, stop),
		Timeframe:   signal.TF4h,
		Strategy:    NameMeanReversion,
		Reasoning: []string{
			fmt.Sprintf("RSI %.1f deeply oversold", snap.RSI),
			"price below lower Bollinger band",
			"targeting reversion to the middle band",
		},
		Ts: snap.Ts,
	}
}
