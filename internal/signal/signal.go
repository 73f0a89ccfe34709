// Package signal defines trading signals and the bounded registry that
// distributes them to consumers.
package signal

import (
	"fmt"
	"time"
)

// Action is the direction a signal recommends.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Timeframe is the horizon a signal applies to.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

// Signal is an immutable recommendation produced by a strategy detector.
type Signal struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Action      Action    `json:"action"`
	Confidence  float64   `json:"confidence"` // [0,100]
	Strength    float64   `json:"strength"`   // [0,100]
	EntryPrice  float64   `json:"entryPrice"`
	TargetPrice float64   `json:"targetPrice"`
	StopLoss    float64   `json:"stopLoss"`
	RiskReward  float64   `json:"riskReward"`
	Timeframe   Timeframe `json:"timeframe"`
	Strategy    string    `json:"strategy"`
	Reasoning   []string  `json:"reasoning"`
	Ts          time.Time `json:"ts"`
}

// MakeID derives the unique signal id from its origin and creation time.
func MakeID(strategy, symbol string, ts time.Time) string {
	return fmt.Sprintf("%s-%s-%d", strategy, symbol, ts.UnixNano())
}

// RiskReward computes reward-per-unit-risk with the buy-side sign convention;
// the denominator flips for sells so the ratio stays positive for a
// well-formed signal. Degenerate stops yield 0.
func RiskReward(action Action, entry, target, stop float64) float64 {
	var reward, risk float64
	switch action {
	case Sell:
		reward = entry - target
		risk = stop - entry
	default:
		reward = target - entry
		risk = entry - stop
	}
	if risk == 0 {
		return 0
	}
	return reward / risk
}
