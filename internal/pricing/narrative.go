package pricing

import (
	"fmt"
	"strings"

	"github.com/amplifi/rate-engine/internal/model"
)

// buildNarrative templates the free-text analysis sections from the numbers
// already computed for the result. Pure presentation; nothing here feeds
// back into the price.
func buildNarrative(
	location string,
	result model.PricingResult,
	summary model.CompetitorStats,
	analysis model.DemandAnalysis,
	cfg model.HotelConfig,
) model.DetailedAnalysis {
	return model.DetailedAnalysis{
		MarketOverview:       marketOverview(location, summary, analysis),
		CompetitiveLandscape: competitiveLandscape(result, summary),
		DemandDrivers:        demandDriversNarrative(analysis, result.DemandDrivers),
		PricingStrategy:      strategyNarrative(result, cfg),
		RiskFactors:          riskFactors(result, summary, analysis),
		RevenueOptimization:  revenueNarrative(result, cfg),
	}
}

func marketOverview(location string, summary model.CompetitorStats, analysis model.DemandAnalysis) string {
	if summary.Count == 0 {
		return fmt.Sprintf(
			"Limited market visibility for %s. No usable competitor pricing was found, so the recommendation anchors on the property profile. Demand is assessed as %s.",
			location, analysis.Level)
	}
	return fmt.Sprintf(
		"The %s market shows %d comparable properties with rates from $%s to $%s (average $%s). Current demand is %s with a net multiplier of %.2f.",
		location, summary.Count, summary.Min, summary.Max, summary.Avg.Round(0),
		analysis.Level, analysis.Multiplier)
}

func competitiveLandscape(result model.PricingResult, summary model.CompetitorStats) string {
	if summary.Count == 0 {
		return "No direct competitor rates were available for comparison; positioning defaults to market rate."
	}
	switch result.MarketPosition {
	case PositionPremium:
		return fmt.Sprintf(
			"At $%s the property sits above the market average of $%s, a premium position supported by the %s demand outlook.",
			result.RecommendedPrice, summary.Avg.Round(0), result.DemandLevel)
	case PositionValue:
		return fmt.Sprintf(
			"At $%s the property undercuts the market average of $%s, a value position aimed at occupancy capture.",
			result.RecommendedPrice, summary.Avg.Round(0))
	default:
		return fmt.Sprintf(
			"At $%s the property tracks the market average of $%s, holding a competitive mid-market position.",
			result.RecommendedPrice, summary.Avg.Round(0))
	}
}

func demandDriversNarrative(analysis model.DemandAnalysis, drivers []string) string {
	var parts []string
	if len(drivers) > 0 {
		parts = append(parts, fmt.Sprintf("Active demand signals: %s.", strings.Join(drivers, ", ")))
	}
	if len(analysis.Factors) > 0 {
		parts = append(parts, fmt.Sprintf("Contributing factors: %s.", strings.Join(analysis.Factors, ", ")))
	}
	if len(parts) == 0 {
		return "No notable demand drivers were identified for the target date."
	}
	return strings.Join(parts, " ")
}

func strategyNarrative(result model.PricingResult, cfg model.HotelConfig) string {
	switch result.PricingStrategy {
	case StrategySurge:
		return fmt.Sprintf(
			"Surge pricing is in effect for the %s demand window. The rate is capped by the configured ceiling of $%s.",
			result.DemandLevel, cfg.MaxPrice)
	case StrategyDiscount:
		return fmt.Sprintf(
			"A discount strategy applies: soft demand pulls the rate down, floored at the configured minimum of $%s.",
			cfg.MinPrice)
	default:
		return "Standard pricing applies: demand conditions do not justify a surge premium or a defensive discount."
	}
}

func riskFactors(result model.PricingResult, summary model.CompetitorStats, analysis model.DemandAnalysis) string {
	var risks []string
	if summary.Count == 0 {
		risks = append(risks, "no competitor data, so market positioning is unverified")
	} else if summary.Count < 5 {
		risks = append(risks, fmt.Sprintf("thin competitor sample (%d properties)", summary.Count))
	}
	if result.Confidence < 0.60 {
		risks = append(risks, fmt.Sprintf("low confidence score (%.2f)", result.Confidence))
	}
	if analysis.LeadTimeDays > 60 {
		risks = append(risks, fmt.Sprintf("long booking horizon (%d days) reduces forecast reliability", analysis.LeadTimeDays))
	}
	if result.MarketPosition == PositionPremium {
		risks = append(risks, "premium positioning may depress pickup if demand softens")
	}
	if len(risks) == 0 {
		return "No significant risk factors identified for this recommendation."
	}
	return "Key risks: " + strings.Join(risks, "; ") + "."
}

func revenueNarrative(result model.PricingResult, cfg model.HotelConfig) string {
	return fmt.Sprintf(
		"At the recommended rate the property projects %.1f%% occupancy (%d of %d rooms), an ADR of $%s, RevPAR of $%s, and $%s in room revenue for the night.",
		result.KPIs.ProjectedOccupancy, result.KPIs.RoomsSold, cfg.TotalRooms,
		result.KPIs.ADR, result.KPIs.RevPAR, result.KPIs.ProjectedRevenue)
}
