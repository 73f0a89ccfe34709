package risk

import (
	"math"
	"testing"

	"quantdesk/internal/signal"
)

func sig(confidence, riskReward float64) signal.Signal {
	return signal.Signal{
		Symbol:     "BTC",
		Action:     signal.Buy,
		Confidence: confidence,
		RiskReward: riskReward,
	}
}

func TestKellySizingExample(t *testing.T) {
	e := DefaultEvaluator()
	view := PortfolioView{TotalValue: 100000}

	// kelly = (0.8*2 - 0.2)/2 = 0.7; half-kelly 0.35 clamps to 10%
	d := e.Evaluate(sig(80, 2.0), view)
	if !d.Approved {
		t.Fatalf("expected approval, got %q", d.Reason)
	}
	if d.SizeQuote != 10000 {
		t.Fatalf("size should be exactly 10%% of total value, got %v", d.SizeQuote)
	}
}

func TestConfidenceGateFirst(t *testing.T) {
	e := DefaultEvaluator()
	view := PortfolioView{TotalValue: 100000}
	for _, rr := range []float64{0.5, 2, 10, 100} {
		d := e.Evaluate(sig(65, rr), view)
		if d.Approved || d.Reason != ReasonLowConfidence {
			t.Fatalf("confidence 65 must always reject with %q, got %+v", ReasonLowConfidence, d)
		}
	}
}

func TestDegenerateKellyRejectsOnRiskLimits(t *testing.T) {
	e := DefaultEvaluator()
	view := PortfolioView{TotalValue: 100000}

	for _, rr := range []float64{0, -1.5} {
		d := e.Evaluate(sig(95, rr), view)
		if d.Approved || d.Reason != ReasonRiskLimits {
			t.Fatalf("riskReward %v must reject with %q, got %+v", rr, ReasonRiskLimits, d)
		}
	}

	// negative kelly: p=0.7, b=0.2 -> (0.14-0.3)/0.2 < 0
	d := e.Evaluate(sig(70, 0.2), view)
	if d.Approved || d.Reason != ReasonRiskLimits {
		t.Fatalf("negative kelly must size to zero and reject, got %+v", d)
	}
}

func TestDailyLossGate(t *testing.T) {
	e := DefaultEvaluator()
	view := PortfolioView{TotalValue: 100000, DailyPnL: -2500}
	d := e.Evaluate(sig(80, 2.0), view)
	if d.Approved || d.Reason != ReasonDailyLoss {
		t.Fatalf("2.5%% daily loss must reject with %q, got %+v", ReasonDailyLoss, d)
	}

	view.DailyPnL = -1500
	if d := e.Evaluate(sig(80, 2.0), view); !d.Approved {
		t.Fatalf("1.5%% daily loss is inside the limit, got %q", d.Reason)
	}
}

func TestHalfKellyBelowCap(t *testing.T) {
	e := DefaultEvaluator()
	view := PortfolioView{TotalValue: 50000}

	// kelly = (0.72*1.2 - 0.28)/1.2 = 0.48666...; half = 0.24333 > cap
	d := e.Evaluate(sig(72, 1.2), view)
	if !d.Approved {
		t.Fatalf("expected approval, got %q", d.Reason)
	}
	if d.SizeQuote != 5000 {
		t.Fatalf("capped size should be 10%% of 50000, got %v", d.SizeQuote)
	}

	// small edge stays below the cap: kelly = (0.72*0.45-0.28)/0.45 ≈ 0.098
	d = e.Evaluate(sig(72, 0.45), view)
	if !d.Approved {
		t.Fatalf("expected approval, got %q", d.Reason)
	}
	kelly := (0.72*0.45 - 0.28) / 0.45
	want := 50000 * kelly * 0.5
	if math.Abs(d.SizeQuote-want) > 1e-6 {
		t.Fatalf("uncapped half-kelly size: got %v want %v", d.SizeQuote, want)
	}
}
