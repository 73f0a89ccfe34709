// Package analytics implements closed-form portfolio statistics over periodic
// return series. Everything here is stateless: no dependency on the live
// engine, population variance throughout, and every division guarded so
// callers see 0 instead of NaN or Inf.
package analytics

import (
	"math"
	"sort"
)

// TradingDays is the annualization factor for periodic returns.
const TradingDays = 252

// TotalReturn compounds the series: Π(1+r) − 1.
func TotalReturn(returns []float64) float64 {
	out := 1.0
	for _, r := range returns {
		out *= 1 + r
	}
	return out - 1
}

// Volatility is the annualized population standard deviation of returns.
func Volatility(returns []float64) float64 {
	return stdev(returns) * math.Sqrt(TradingDays)
}

// Sharpe is (total return − risk-free) over annualized volatility, 0 when the
// series has no volatility.
func Sharpe(returns []float64, riskFree float64) float64 {
	vol := Volatility(returns)
	if vol == 0 {
		return 0
	}
	return (TotalReturn(returns) - riskFree) / vol
}

// MaxDrawdown is the largest peak-to-trough decline of the compounded value
// path, starting from 1.
func MaxDrawdown(returns []float64) float64 {
	value, peak, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (peak - value) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Beta is cov(returns, bench) / var(bench).
func Beta(returns, bench []float64) float64 {
	v := variance(bench)
	if v == 0 {
		return 0
	}
	return covariance(returns, bench) / v
}

// Alpha is the CAPM excess: total − (rf + beta×(benchTotal − rf)).
func Alpha(returns, bench []float64, riskFree float64) float64 {
	beta := Beta(returns, bench)
	return TotalReturn(returns) - (riskFree + beta*(TotalReturn(bench)-riskFree))
}

// InformationRatio is mean active return over tracking error, 0 when the two
// series never diverge.
func InformationRatio(returns, bench []float64) float64 {
	n := min(len(returns), len(bench))
	if n == 0 {
		return 0
	}
	active := make([]float64, n)
	for i := 0; i < n; i++ {
		active[i] = returns[i] - bench[i]
	}
	te := stdev(active)
	if te == 0 {
		return 0
	}
	return mean(active) / te
}

// Sortino is mean excess return over downside deviation, where only negative
// excess periods contribute to the denominator.
func Sortino(returns []float64, riskFree float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	perPeriod := riskFree / TradingDays
	excess := make([]float64, len(returns))
	var downside []float64
	for i, r := range returns {
		excess[i] = r - perPeriod
		if excess[i] < 0 {
			downside = append(downside, excess[i])
		}
	}
	dd := stdev(downside)
	if dd == 0 {
		return 0
	}
	return mean(excess) / dd
}

// VaR95 is the 5th percentile of the historical return distribution.
func VaR95(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * 0.05)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ExpectedShortfall is the mean of returns below the 95% VaR cutoff, 0 when
// no observation falls below it.
func ExpectedShortfall(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * 0.05)
	if idx == 0 {
		return 0
	}
	return mean(sorted[:idx])
}

// ConcentrationRisk is the Herfindahl index of the supplied weights.
func ConcentrationRisk(weights []float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	return sum
}

// CorrelationMatrix computes pairwise correlations with a fixed diagonal of 1.
// A zero-variance series correlates 0 with everything else.
func CorrelationMatrix(series [][]float64) [][]float64 {
	n := len(series)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			si, sj := stdev(series[i]), stdev(series[j])
			var c float64
			if si != 0 && sj != 0 {
				c = covariance(series[i], series[j]) / (si * sj)
			}
			out[i][j] = c
			out[j][i] = c
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

func stdev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}

func covariance(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	a, b = a[:n], b[:n]
	ma, mb := mean(a), mean(b)
	var sum float64
	for i := 0; i < n; i++ {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(n)
}
