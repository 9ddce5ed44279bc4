// Package pricing orchestrates the rate recommendation: competitor
// statistics, demand analysis, occupancy projection, and confidence scoring
// combine into a bounded price with a full KPI set and human-readable
// reasoning.
//
// The engine is pure: it only reads its inputs and returns a fresh result,
// so it is safe to invoke concurrently for independent requests. Missing
// market data is never an error — the engine falls back to documented
// default bands and lets the confidence score carry the uncertainty.
//
// All monetary values use shopspring/decimal — never float64 for money.
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/confidence"
	"github.com/amplifi/rate-engine/internal/demand"
	"github.com/amplifi/rate-engine/internal/model"
	"github.com/amplifi/rate-engine/internal/occupancy"
	"github.com/amplifi/rate-engine/internal/stats"
)

var (
	// ErrInvalidConfig is returned for structurally invalid hotel
	// configuration. The engine fails fast rather than clamping nonsense.
	ErrInvalidConfig = errors.New("pricing: invalid hotel configuration")

	// ErrNoCompetitors is returned by OverridePrice when the competitor
	// list is empty — rank positioning is meaningless without a market.
	ErrNoCompetitors = errors.New("pricing: no competitor data available")
)

// Market positions relative to the competitor average.
const (
	PositionPremium     = "premium"
	PositionCompetitive = "competitive"
	PositionValue       = "value"
	PositionMarketRate  = "market_rate"
)

// Pricing strategy tags.
const (
	StrategySurge    = "surge"
	StrategyStandard = "standard"
	StrategyDiscount = "discount"
)

// ComputePrice produces the rate recommendation for a location and date.
// now anchors lead-time computation so results are reproducible; competitors
// and events may be empty, partial, or noisy.
func ComputePrice(
	location string,
	date, now time.Time,
	cfg model.HotelConfig,
	competitors []model.CompetitorObservation,
	events []model.MarketEvent,
) (model.PricingResult, error) {
	cfg = cfg.WithDefaults()
	if err := validateConfig(cfg); err != nil {
		return model.PricingResult{}, err
	}

	summary := stats.Summarize(competitors)
	base := basePrice(summary, cfg.StarRating)
	analysis := demand.Analyze(date, now, events)

	price := base.Mul(decimal.NewFromFloat(analysis.Multiplier))
	price = clampPrice(price, cfg.MinPrice, cfg.MaxPrice).Round(2)

	occ := roundTo(occupancy.Project(price, summary, analysis, cfg.BaseOccupancy), 1)
	kpis := ComputeKPIs(price, occ, cfg.TotalRooms)

	score := confidence.Score(competitors, events, analysis.LeadTimeDays)

	result := model.PricingResult{
		RecommendedPrice:   price,
		Confidence:         score,
		Reasoning:          buildReasoning(summary, analysis),
		MarketPosition:     marketPosition(price, summary),
		PricingStrategy:    pricingStrategy(analysis),
		DemandLevel:        analysis.Level,
		DemandDrivers:      demandDrivers(events),
		KPIs:               kpis,
		CompetitorAnalysis: summary,
	}
	result.DetailedAnalysis = buildNarrative(location, result, summary, analysis, cfg)
	return result, nil
}

// ComputeKPIs derives the mutually consistent KPI set from a price, a
// projected occupancy percentage, and the room count:
// rooms_sold = floor(rooms·occ/100), revpar = adr·occ/100,
// projected_revenue = rooms_sold·adr.
func ComputeKPIs(price decimal.Decimal, occ float64, totalRooms int) model.KPISet {
	roomsSold := int(float64(totalRooms) * occ / 100)
	occFraction := decimal.NewFromFloat(occ).Div(decimal.NewFromInt(100))
	return model.KPISet{
		ProjectedOccupancy: occ,
		ADR:                price,
		RevPAR:             price.Mul(occFraction).Round(2),
		ProjectedRevenue:   price.Mul(decimal.NewFromInt(int64(roomsSold))).Round(2),
		RoomsSold:          roomsSold,
	}
}

func validateConfig(cfg model.HotelConfig) error {
	if cfg.TotalRooms <= 0 {
		return fmt.Errorf("%w: totalRooms must be positive, got %d", ErrInvalidConfig, cfg.TotalRooms)
	}
	if cfg.MinPrice.GreaterThan(cfg.MaxPrice) {
		return fmt.Errorf("%w: minPrice %s exceeds maxPrice %s", ErrInvalidConfig, cfg.MinPrice, cfg.MaxPrice)
	}
	if cfg.BaseOccupancy < 0 || cfg.BaseOccupancy > 100 {
		return fmt.Errorf("%w: baseOccupancy must be within 0-100, got %.1f", ErrInvalidConfig, cfg.BaseOccupancy)
	}
	return nil
}

// basePrice picks the market anchor by star rating: upscale hotels price at
// the 75th percentile, mid-scale at the median, economy at the 25th. With
// no usable market data the anchor is star-linear: 80 + (stars-1)·40.
func basePrice(summary model.CompetitorStats, starRating int) decimal.Decimal {
	if summary.Count == 0 {
		return decimal.NewFromInt(int64(80 + (starRating-1)*40))
	}
	switch {
	case starRating >= 4:
		return summary.P75
	case starRating <= 2:
		return summary.P25
	default:
		return summary.Median
	}
}

func clampPrice(p, min, max decimal.Decimal) decimal.Decimal {
	if p.LessThan(min) {
		return min
	}
	if p.GreaterThan(max) {
		return max
	}
	return p
}

// marketPosition labels the price against the competitor average:
// more than 10% above is premium, more than 10% below is value.
func marketPosition(price decimal.Decimal, summary model.CompetitorStats) string {
	if summary.Count == 0 || !summary.Avg.IsPositive() {
		return PositionMarketRate
	}
	ratio := price.Div(summary.Avg).InexactFloat64()
	switch {
	case ratio > 1.1:
		return PositionPremium
	case ratio < 0.9:
		return PositionValue
	default:
		return PositionCompetitive
	}
}

func pricingStrategy(analysis model.DemandAnalysis) string {
	switch {
	case analysis.Level == demand.LevelPeak || analysis.Level == demand.LevelHigh:
		return StrategySurge
	case analysis.Multiplier < 0.95:
		return StrategyDiscount
	default:
		return StrategyStandard
	}
}

// demandDrivers lists the names of the contributing events, capped at five.
func demandDrivers(events []model.MarketEvent) []string {
	drivers := make([]string, 0, 5)
	for _, e := range events {
		if e.Name == "" {
			continue
		}
		drivers = append(drivers, e.Name)
		if len(drivers) == 5 {
			break
		}
	}
	return drivers
}

// buildReasoning joins the explanation clauses with "; " in a fixed order:
// competitor, demand, weekend, season. Regenerable deterministically from
// the same inputs.
func buildReasoning(summary model.CompetitorStats, analysis model.DemandAnalysis) string {
	var clauses []string

	if summary.Count > 0 {
		clauses = append(clauses, fmt.Sprintf(
			"Positioned against %d competitors (avg $%s)",
			summary.Count, summary.Avg.Round(0)))
	}

	switch analysis.Level {
	case demand.LevelPeak:
		clauses = append(clauses, "High-impact events driving premium pricing")
	case demand.LevelHigh:
		clauses = append(clauses, "Market events supporting rate increase")
	}

	if hasFactor(analysis, "Weekend demand") {
		clauses = append(clauses, "Weekend premium applied")
	}

	switch {
	case hasFactor(analysis, "Summer season") || hasFactor(analysis, "Holiday season"):
		clauses = append(clauses, "Peak season pricing in effect")
	case hasFactor(analysis, "Off-season"):
		clauses = append(clauses, "Off-season discount applied")
	}

	if len(clauses) == 0 {
		return "Based on market analysis and demand patterns"
	}
	return strings.Join(clauses, "; ")
}

func hasFactor(analysis model.DemandAnalysis, name string) bool {
	for _, f := range analysis.Factors {
		if f == name {
			return true
		}
	}
	return false
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}
