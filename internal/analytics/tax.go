package analytics

import "math"

// Default tax parameters used when the caller has no configuration.
const (
	DefaultHarvestThreshold = 1000.0 // minimum loss magnitude worth harvesting
	DefaultTaxRate          = 0.25
)

// Holding is one taxable lot.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Amount       float64 `json:"amount"`
	CostBasis    float64 `json:"costBasis"`
	CurrentPrice float64 `json:"currentPrice"`
}

// HarvestCandidate recommends realizing one loss.
type HarvestCandidate struct {
	Symbol     string  `json:"symbol"`
	GainLoss   float64 `json:"gainLoss"`
	TaxSavings float64 `json:"taxSavings"`
}

// TaxReport summarizes harvesting opportunities over a set of holdings.
type TaxReport struct {
	Candidates            []HarvestCandidate `json:"candidates"`
	TotalGains            float64            `json:"totalGains"`
	TotalLosses           float64            `json:"totalLosses"` // magnitude
	PotentialSavings      float64            `json:"potentialSavings"`
	ProjectedTaxLiability float64            `json:"projectedTaxLiability"`
}

// HarvestOpportunities scans holdings for losses worth realizing. Losses
// smaller than threshold in magnitude are ignored for recommendations but
// still offset gains in the projected liability.
func HarvestOpportunities(holdings []Holding, threshold, taxRate float64) TaxReport {
	if threshold <= 0 {
		threshold = DefaultHarvestThreshold
	}
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}

	var report TaxReport
	for _, h := range holdings {
		gainLoss := h.Amount * (h.CurrentPrice - h.CostBasis)
		if gainLoss >= 0 {
			report.TotalGains += gainLoss
			continue
		}
		loss := math.Abs(gainLoss)
		report.TotalLosses += loss
		if loss < threshold {
			continue
		}
		savings := loss * taxRate
		report.PotentialSavings += savings
		report.Candidates = append(report.Candidates, HarvestCandidate{
			Symbol:     h.Symbol,
			GainLoss:   gainLoss,
			TaxSavings: savings,
		})
	}
	report.ProjectedTaxLiability = math.Max(0, report.TotalGains-report.TotalLosses) * taxRate
	return report
}
