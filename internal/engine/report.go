package engine

import (
	"math"
	"time"

	"quantdesk/internal/analytics"
	"quantdesk/internal/portfolio"
	"quantdesk/internal/signal"
	"quantdesk/internal/strategy"
)

// Prediction is a snapshot-derived directional forecast for one symbol.
type Prediction struct {
	Symbol         string           `json:"symbol"`
	Direction      signal.Action    `json:"direction"`
	PredictedPrice float64          `json:"predictedPrice"`
	Confidence     float64          `json:"confidence"` // [0,100]
	Horizon        signal.Timeframe `json:"horizon"`
	Ts             time.Time        `json:"ts"`
}

// RiskMetrics bundles the headline risk figures computed from the ledger's
// return history.
type RiskMetrics struct {
	Volatility        float64 `json:"volatility"`
	SharpeRatio       float64 `json:"sharpeRatio"`
	SortinoRatio      float64 `json:"sortinoRatio"`
	MaxDrawdown       float64 `json:"maxDrawdown"`
	VaR95             float64 `json:"var95"`
	ExpectedShortfall float64 `json:"expectedShortfall"`
	ConcentrationRisk float64 `json:"concentrationRisk"`
}

// Report is the full analytics view handed to external consumers.
type Report struct {
	Portfolio     portfolio.Snapshot  `json:"portfolio"`
	ActiveSignals []signal.Signal     `json:"activeSignals"`
	Strategies    []strategy.Strategy `json:"strategies"`
	Predictions   []Prediction        `json:"predictions"`
	RiskMetrics   RiskMetrics         `json:"riskMetrics"`
}

// RequestPredictions builds predictions for the requested symbols. Unknown
// symbols are skipped rather than failing the batch.
func (e *Engine) RequestPredictions(symbols []string) []Prediction {
	now := time.Now()
	out := make([]Prediction, 0, len(symbols))
	for _, sym := range symbols {
		snap, ok := e.store.Get(sym)
		if !ok {
			e.log.Debug().Str("sym", sym).Msg("prediction requested for unknown symbol")
			continue
		}

		// blend oversold/overbought distance, MACD direction, and momentum
		rsiBias := (50 - snap.RSI) / 50
		macdBias := math.Tanh(snap.MACD / math.Max(snap.Price*0.01, 1e-9))
		momentumBias := clampF(snap.Change24h/10, -1, 1)
		score := 0.5*rsiBias + 0.3*macdBias + 0.2*momentumBias

		direction := signal.Hold
		switch {
		case score > 0.15:
			direction = signal.Buy
		case score < -0.15:
			direction = signal.Sell
		}

		out = append(out, Prediction{
			Symbol:         sym,
			Direction:      direction,
			PredictedPrice: snap.Price * (1 + score*0.05),
			Confidence:     math.Min(90, 50+math.Abs(score)*40),
			Horizon:        signal.TF4h,
			Ts:             now,
		})
	}
	return out
}

// Analytics bundles the portfolio snapshot, recent signals, the strategy
// table, predictions for the tracked universe, and risk metrics.
func (e *Engine) Analytics() Report {
	snap := e.ledger.Snapshot()
	rets := e.ledger.Returns()

	weights := make([]float64, 0, len(snap.Positions))
	for _, pos := range snap.Positions {
		weights = append(weights, pos.Allocation)
	}

	symbols := make([]string, 0)
	for _, s := range e.store.All() {
		symbols = append(symbols, s.Symbol)
	}

	return Report{
		Portfolio:     snap,
		ActiveSignals: e.registry.Recent(20),
		Strategies:    e.book.List(),
		Predictions:   e.RequestPredictions(symbols),
		RiskMetrics: RiskMetrics{
			Volatility:        analytics.Volatility(rets),
			SharpeRatio:       analytics.Sharpe(rets, e.cfg.Analytics.RiskFreeRate),
			SortinoRatio:      analytics.Sortino(rets, e.cfg.Analytics.RiskFreeRate),
			MaxDrawdown:       analytics.MaxDrawdown(rets),
			VaR95:             analytics.VaR95(rets),
			ExpectedShortfall: analytics.ExpectedShortfall(rets),
			ConcentrationRisk: analytics.ConcentrationRisk(weights),
		},
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
