// Package stats reduces raw competitor price observations into a robust
// statistical summary for the pricing engine.
//
// All monetary values use shopspring/decimal — never float64 for money.
// The standard deviation uses float64 internally (square root), with the
// result immediately converted back to decimal.
//
// Conventions, pinned by tests:
//   - prices at or below the $50 noise floor are excluded
//   - median is the upper median for even counts (sorted[n/2])
//   - percentiles use integer-index selection: sorted[n/4] and sorted[3n/4]
//   - standard deviation is the population form (divide by n)
package stats

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/model"
)

// NoiseFloor is the price at or below which an observation is treated as
// parsing noise or a free listing and excluded from statistics.
var NoiseFloor = decimal.NewFromInt(50)

// Summarize computes the statistical summary of a competitor batch.
// When no usable prices remain after filtering it returns Fallback(), so
// downstream code never special-cases "no data" — it is just a wide,
// low-confidence band with Count==0.
func Summarize(observations []model.CompetitorObservation) model.CompetitorStats {
	prices := ValidPrices(observations)
	if len(prices) == 0 {
		return Fallback()
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })
	n := len(prices)

	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	avg := sum.Div(decimal.NewFromInt(int64(n)))

	// Population variance in float64; only the final stddev is money-shaped.
	avgF := avg.InexactFloat64()
	var sq float64
	for _, p := range prices {
		d := p.InexactFloat64() - avgF
		sq += d * d
	}
	stdDev := decimal.NewFromFloat(math.Sqrt(sq / float64(n)))

	return model.CompetitorStats{
		Count:  n,
		Min:    prices[0].Round(2),
		Max:    prices[n-1].Round(2),
		Avg:    avg.Round(2),
		Median: prices[n/2].Round(2),
		StdDev: stdDev.Round(2),
		P25:    prices[n/4].Round(2),
		P75:    prices[3*n/4].Round(2),
	}
}

// ValidPrices returns the prices strictly above the noise floor, in input
// order. Duplicate observations are kept; de-duplication is an acquisition
// concern and the summary is robust to them.
func ValidPrices(observations []model.CompetitorObservation) []decimal.Decimal {
	prices := make([]decimal.Decimal, 0, len(observations))
	for _, o := range observations {
		if o.Price.GreaterThan(NoiseFloor) {
			prices = append(prices, o.Price)
		}
	}
	return prices
}

// Fallback is the fixed wide band returned when no usable prices exist.
func Fallback() model.CompetitorStats {
	return model.CompetitorStats{
		Count:  0,
		Min:    decimal.NewFromInt(100),
		Max:    decimal.NewFromInt(300),
		Avg:    decimal.NewFromInt(150),
		Median: decimal.NewFromInt(150),
		StdDev: decimal.NewFromInt(50),
		P25:    decimal.NewFromInt(125),
		P75:    decimal.NewFromInt(175),
	}
}
