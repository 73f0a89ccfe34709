package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quantdesk/internal/config"
	"quantdesk/internal/journal"
	"quantdesk/internal/market"
	"quantdesk/internal/risk"
	"quantdesk/internal/signal"
	"quantdesk/internal/strategy"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Market.Symbols = []string{"BTC"}
	cfg.Market.SeedPrices = map[string]float64{"BTC": 100}
	cfg.Market.UpdateIntervalMs = 5
	cfg.Market.DetectIntervalMs = 10
	cfg.Portfolio.StartingCash = 100000
	return cfg
}

// stillQuoter keeps prices flat so tests control every number.
type stillQuoter struct{}

func (stillQuoter) Quote(prev market.Snapshot, now time.Time) market.Snapshot {
	prev.Ts = now
	return prev
}

// fireDetector emits one strong BUY per snapshot.
type fireDetector struct{}

func (fireDetector) Name() string { return "Always Fire" }

func (fireDetector) Detect(snap market.Snapshot) *signal.Signal {
	ts := time.Now()
	target := snap.Price * 1.08
	stop := snap.Price * 0.95
	return &signal.Signal{
		ID:          signal.MakeID("Always Fire", snap.Symbol, ts),
		Symbol:      snap.Symbol,
		Action:      signal.Buy,
		Confidence:  80,
		Strength:    85,
		EntryPrice:  snap.Price,
		TargetPrice: target,
		StopLoss:    stop,
		RiskReward:  2.0,
		Timeframe:   signal.TF1h,
		Strategy:    "Always Fire",
		Ts:          ts,
	}
}

func fireBook() (*strategy.Book, []strategy.Detector) {
	book := strategy.NewBook(strategy.Strategy{Name: "Always Fire", RiskLevel: strategy.RiskHigh, Active: true})
	return book, []strategy.Detector{fireDetector{}}
}

func testSignal(confidence, riskReward float64) signal.Signal {
	ts := time.Now()
	return signal.Signal{
		ID:          signal.MakeID("Always Fire", "BTC", ts),
		Symbol:      "BTC",
		Action:      signal.Buy,
		Confidence:  confidence,
		EntryPrice:  100,
		TargetPrice: 108,
		StopLoss:    95,
		RiskReward:  riskReward,
		Strategy:    "Always Fire",
		Ts:          ts,
	}
}

func TestAutoTradingDisabledLeavesLedgerUntouched(t *testing.T) {
	rec := journal.NewMemory(4)
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets), WithRecorder(rec))

	res := eng.ExecuteSignal(testSignal(80, 2.0))
	if res.Executed {
		t.Fatalf("execution must be gated while auto-trading is off")
	}
	if res.Reason != ReasonDisabled {
		t.Fatalf("reason: got %q want %q", res.Reason, ReasonDisabled)
	}
	if cash := eng.Portfolio().Cash; cash != 100000 {
		t.Fatalf("ledger touched while disabled: cash %v", cash)
	}
	entries := rec.Snapshot()
	if len(entries) != 1 || entries[0].Executed {
		t.Fatalf("rejection should be journaled: %+v", entries)
	}
}

func TestExecuteSignalSizesTenPercent(t *testing.T) {
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets))
	eng.SetAutoTrading(true)

	res := eng.ExecuteSignal(testSignal(80, 2.0))
	if !res.Executed {
		t.Fatalf("expected execution, got %q", res.Reason)
	}
	if res.OrderID == "" {
		t.Fatalf("executed trade must carry an order id")
	}
	if math.Abs(res.TotalValue-10000) > 1e-6 {
		t.Fatalf("trade value should be 10%% of equity, got %v", res.TotalValue)
	}
	if math.Abs(res.Quantity-100) > 1e-9 {
		t.Fatalf("quantity at price 100 should be 100, got %v", res.Quantity)
	}

	snap := eng.Portfolio()
	if math.Abs(snap.Cash-90000) > 1e-6 {
		t.Fatalf("cash after settlement: %v", snap.Cash)
	}
	if pos := snap.Positions["BTC"]; math.Abs(pos.Quantity-100) > 1e-9 {
		t.Fatalf("position not settled: %+v", pos)
	}
}

func TestExecuteSignalLowConfidence(t *testing.T) {
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets))
	eng.SetAutoTrading(true)

	res := eng.ExecuteSignal(testSignal(65, 10))
	if res.Executed || res.Reason != risk.ReasonLowConfidence {
		t.Fatalf("confidence 65 must reject with %q, got %+v", risk.ReasonLowConfidence, res)
	}
}

func TestExecuteSignalInsufficientFunds(t *testing.T) {
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets))
	eng.SetAutoTrading(true)

	// every buy converts 10% of (constant) equity from cash to position
	for i := 0; i < 10; i++ {
		res := eng.ExecuteSignal(testSignal(80, 2.0))
		if !res.Executed {
			t.Fatalf("trade %d rejected: %q", i, res.Reason)
		}
	}
	res := eng.ExecuteSignal(testSignal(80, 2.0))
	if res.Executed || res.Reason != ReasonInsufficientFunds {
		t.Fatalf("exhausted cash must reject with %q, got %+v", ReasonInsufficientFunds, res)
	}
}

func TestSetStrategyActive(t *testing.T) {
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets))

	if eng.SetStrategyActive("No Such Strategy", true) {
		t.Fatalf("unknown strategy must report false")
	}
	if !eng.SetStrategyActive("Always Fire", false) {
		t.Fatalf("known strategy toggle failed")
	}

	eng.runDetectors()
	if eng.Signals().Len() != 0 {
		t.Fatalf("inactive strategy must not emit signals")
	}

	eng.SetStrategyActive("Always Fire", true)
	eng.runDetectors()
	if eng.Signals().Len() == 0 {
		t.Fatalf("active strategy should emit signals")
	}
}

func TestSetAutoTradingIdempotent(t *testing.T) {
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets))

	if !eng.SetAutoTrading(true) || !eng.AutoTrading() {
		t.Fatalf("enable failed")
	}
	if !eng.SetAutoTrading(true) {
		t.Fatalf("repeated enable must be a no-op success")
	}
	if eng.SetAutoTrading(false) || eng.AutoTrading() {
		t.Fatalf("disable failed")
	}
}

func TestRequestPredictionsSkipsUnknownSymbols(t *testing.T) {
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets))

	preds := eng.RequestPredictions([]string{"BTC", "DOGE"})
	if len(preds) != 1 || preds[0].Symbol != "BTC" {
		t.Fatalf("unknown symbols must be skipped: %+v", preds)
	}
	p := preds[0]
	if p.Confidence < 0 || p.Confidence > 100 || math.IsNaN(p.PredictedPrice) {
		t.Fatalf("malformed prediction: %+v", p)
	}
}

func TestAnalyticsReport(t *testing.T) {
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets))
	eng.SetAutoTrading(true)

	eng.ExecuteSignal(testSignal(80, 2.0))
	eng.updateMarket(time.Now())
	eng.runDetectors()

	report := eng.Analytics()
	if report.Portfolio.TotalValue <= 0 {
		t.Fatalf("portfolio missing from report")
	}
	if len(report.Strategies) != 1 {
		t.Fatalf("strategy table missing")
	}
	if len(report.ActiveSignals) == 0 {
		t.Fatalf("recent signals missing")
	}
	if len(report.Predictions) != 1 {
		t.Fatalf("predictions missing")
	}
	for name, v := range map[string]float64{
		"volatility":    report.RiskMetrics.Volatility,
		"sharpe":        report.RiskMetrics.SharpeRatio,
		"var95":         report.RiskMetrics.VaR95,
		"concentration": report.RiskMetrics.ConcentrationRisk,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s must be finite, got %v", name, v)
		}
	}
}

func TestStartStopDeterministic(t *testing.T) {
	rec := journal.NewMemory(64)
	book, dets := fireBook()
	eng := New(testConfig(), zerolog.Nop(), WithQuoter(stillQuoter{}), WithDetectors(book, dets), WithRecorder(rec))
	eng.SetAutoTrading(true)

	eng.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	eng.Stop()
	eng.Stop() // second stop is a no-op

	if eng.Signals().Len() == 0 {
		t.Fatalf("scheduled detection never ran")
	}
	if len(rec.Snapshot()) == 0 {
		t.Fatalf("scheduled execution never journaled")
	}

	settled := eng.Signals().Len()
	time.Sleep(50 * time.Millisecond)
	if eng.Signals().Len() != settled {
		t.Fatalf("loops kept running after Stop")
	}
}
