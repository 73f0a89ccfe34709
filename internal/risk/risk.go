// Package risk gates signals before capital is committed and sizes the
// approved ones with a capped Kelly fraction.
package risk

import (
	"quantdesk/internal/signal"
)

// Admission rejection reasons, surfaced verbatim to callers.
const (
	ReasonLowConfidence = "confidence too low"
	ReasonRiskLimits    = "exceeds risk limits"
	ReasonDailyLoss     = "daily loss limit reached"
)

// PortfolioView is the slice of ledger state the evaluator needs.
type PortfolioView struct {
	TotalValue float64
	DailyPnL   float64
}

// Decision is the admission outcome for one signal.
type Decision struct {
	Approved  bool
	Reason    string
	SizeQuote float64 // position size in quote currency
}

// Evaluator holds the admission guard-rails.
type Evaluator struct {
	MinConfidence        float64
	MaxPositionFraction  float64
	MaxDailyLossFraction float64
}

// DefaultEvaluator returns the stock limits: confidence 70, position 10%,
// daily loss 2%.
func DefaultEvaluator() Evaluator {
	return Evaluator{MinConfidence: 70, MaxPositionFraction: 0.10, MaxDailyLossFraction: 0.02}
}

// Evaluate sizes the signal and runs the admission gates in order; the first
// failure wins. Rejections are values, never errors.
func (e Evaluator) Evaluate(sig signal.Signal, view PortfolioView) Decision {
	fraction := e.kellyFraction(sig)

	if sig.Confidence < e.MinConfidence {
		return Decision{Reason: ReasonLowConfidence}
	}
	if fraction <= 0 || fraction > e.MaxPositionFraction {
		return Decision{Reason: ReasonRiskLimits}
	}
	if view.DailyPnL < -e.MaxDailyLossFraction*view.TotalValue {
		return Decision{Reason: ReasonDailyLoss}
	}
	return Decision{Approved: true, SizeQuote: view.TotalValue * fraction}
}

// kellyFraction converts confidence and payoff ratio into a capital fraction:
// kelly = (p·b − (1−p)) / b, halved and clamped to [0, max]. A payoff ratio
// of zero or below sizes to nothing.
func (e Evaluator) kellyFraction(sig signal.Signal) float64 {
	b := sig.RiskReward
	if b <= 0 {
		return 0
	}
	p := sig.Confidence / 100
	kelly := (p*b - (1 - p)) / b
	half := kelly * 0.5
	if half < 0 {
		return 0
	}
	if half > e.MaxPositionFraction {
		return e.MaxPositionFraction
	}
	return half
}
