// Package occupancy projects sellable occupancy from base occupancy, demand
// level, and the candidate price's position against the market (price
// elasticity).
package occupancy

import (
	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/demand"
	"github.com/amplifi/rate-engine/internal/model"
)

// Occupancy clamp bounds. 95 is the practical maximum sellable occupancy;
// 25 prevents degenerate zero-occupancy projections. The same bounds apply
// across every entry point of the engine.
const (
	Floor   = 25.0
	Ceiling = 95.0
)

// demandMultipliers maps demand level to an occupancy multiplier.
var demandMultipliers = map[string]float64{
	demand.LevelPeak:   1.30,
	demand.LevelHigh:   1.15,
	demand.LevelMedium: 1.00,
	demand.LevelLow:    0.85,
}

// Project computes the projected occupancy percentage for a candidate price.
// Elasticity bands are an ordered chain; exactly one matches. A ratio of
// 1.05 is "at market" (no adjustment), 1.06 is slightly above (×0.92).
func Project(price decimal.Decimal, stats model.CompetitorStats, analysis model.DemandAnalysis, baseOccupancy float64) float64 {
	occ := baseOccupancy

	if m, ok := demandMultipliers[analysis.Level]; ok {
		occ *= m
	}

	if stats.Count > 0 && stats.Avg.IsPositive() {
		ratio := price.Div(stats.Avg).InexactFloat64()
		switch {
		case ratio > 1.30:
			occ *= 0.75
		case ratio > 1.15:
			occ *= 0.85
		case ratio > 1.05:
			occ *= 0.92
		case ratio < 0.85:
			occ *= 1.20
		case ratio < 0.95:
			occ *= 1.10
		}
	}

	return Clamp(occ)
}

// Clamp bounds an occupancy percentage to [Floor, Ceiling].
func Clamp(occ float64) float64 {
	if occ < Floor {
		return Floor
	}
	if occ > Ceiling {
		return Ceiling
	}
	return occ
}
