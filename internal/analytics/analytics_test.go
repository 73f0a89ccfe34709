package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalReturnCompounds(t *testing.T) {
	assert.InDelta(t, 0.0, TotalReturn(nil), 1e-12)
	assert.InDelta(t, 0.21, TotalReturn([]float64{0.1, 0.1}), 1e-12)
	assert.InDelta(t, -0.04, TotalReturn([]float64{0.2, -0.2}), 1e-12)
}

func TestVolatilityAndSharpeGuards(t *testing.T) {
	flat := []float64{0.01, 0.01, 0.01}
	assert.Zero(t, Volatility(flat))
	assert.Zero(t, Sharpe(flat, 0.02), "zero volatility must yield 0, not Inf")

	rets := []float64{0.02, -0.01, 0.03}
	vol := Volatility(rets)
	require.Greater(t, vol, 0.0)
	assert.InDelta(t, (TotalReturn(rets)-0.02)/vol, Sharpe(rets, 0.02), 1e-12)
}

func TestMaxDrawdown(t *testing.T) {
	assert.Zero(t, MaxDrawdown([]float64{0.01, 0.02, 0.005}), "strictly increasing series has no drawdown")

	// value path 100 -> 80 -> 120
	rets := []float64{-0.20, 0.50}
	assert.InDelta(t, 0.20, MaxDrawdown(rets), 1e-12)
}

func TestBetaAlphaAgainstIdenticalBenchmark(t *testing.T) {
	rets := []float64{0.01, -0.02, 0.03, 0.002}
	bench := append([]float64(nil), rets...)

	assert.InDelta(t, 1.0, Beta(rets, bench), 1e-12)
	assert.InDelta(t, 0.0, Alpha(rets, bench, 0.02), 1e-12)
	assert.Zero(t, InformationRatio(rets, bench), "zero tracking error resolves to 0 by convention")
}

func TestBetaScaledBenchmark(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.03, 0.002}
	rets := make([]float64, len(bench))
	for i, b := range bench {
		rets[i] = 2 * b
	}
	assert.InDelta(t, 2.0, Beta(rets, bench), 1e-12)
}

func TestBetaZeroVarianceBenchmark(t *testing.T) {
	assert.Zero(t, Beta([]float64{0.01, 0.02}, []float64{0.01, 0.01}))
}

func TestSortino(t *testing.T) {
	assert.Zero(t, Sortino(nil, 0.02))
	assert.Zero(t, Sortino([]float64{0.01, 0.02}, 0), "no downside periods resolves to 0")

	rets := []float64{0.02, -0.01, 0.03, -0.02}
	got := Sortino(rets, 0)
	require.False(t, math.IsNaN(got))
	// downside set {-0.01, -0.02}: mean -0.015, population stdev 0.005
	assert.InDelta(t, mean(rets)/0.005, got, 1e-9)
}

func TestVaRAndExpectedShortfall(t *testing.T) {
	assert.Zero(t, VaR95(nil))
	assert.Zero(t, ExpectedShortfall([]float64{0.01}))

	rets := make([]float64, 100)
	for i := range rets {
		rets[i] = float64(i-50) / 1000 // -0.050 .. 0.049
	}
	assert.InDelta(t, -0.045, VaR95(rets), 1e-12)
	// mean of the five observations below the cutoff
	assert.InDelta(t, (-0.050-0.049-0.048-0.047-0.046)/5, ExpectedShortfall(rets), 1e-12)
}

func TestConcentrationRisk(t *testing.T) {
	assert.Zero(t, ConcentrationRisk(nil))
	assert.InDelta(t, 1.0, ConcentrationRisk([]float64{1}), 1e-12)
	assert.InDelta(t, 0.5, ConcentrationRisk([]float64{0.5, 0.5}), 1e-12)
	assert.InDelta(t, 0.58, ConcentrationRisk([]float64{0.7, 0.3}), 1e-12)
}

func TestCorrelationMatrix(t *testing.T) {
	a := []float64{0.01, -0.02, 0.03}
	b := []float64{-0.01, 0.02, -0.03}
	flat := []float64{0.01, 0.01, 0.01}

	m := CorrelationMatrix([][]float64{a, b, flat})
	require.Len(t, m, 3)
	for i := range m {
		assert.InDelta(t, 1.0, m[i][i], 1e-12)
	}
	assert.InDelta(t, -1.0, m[0][1], 1e-12)
	assert.Equal(t, m[0][1], m[1][0])
	assert.Zero(t, m[0][2], "zero-variance series correlates 0")
}
