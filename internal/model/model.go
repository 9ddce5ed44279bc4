// Package model defines the core domain types shared across the rate engine.
// All monetary values use shopspring/decimal — never float64 for money.
// Occupancy percentages, demand multipliers, and confidence scores are
// float64: they are dimensionless ratios, not currency.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event impact levels.
const (
	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// Event provenance tags. Search-sourced events come from a live web search,
// AI events are inferred by the research provider, calendar events are
// derived from fixed holiday rules.
const (
	EventSourceSearch   = "search"
	EventSourceAI       = "ai"
	EventSourceCalendar = "calendar"
)

// CompetitorObservation is one reported competitor price point. Observations
// are immutable once produced; a batch of them is the unit the pricing
// engine consumes. Prices at or below the noise floor are excluded by the
// statistics layer, not here.
type CompetitorObservation struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stars     int             `json:"stars,omitempty"`
	Brand     string          `json:"brand,omitempty"`
	Source    string          `json:"source,omitempty"`
	Location  string          `json:"location,omitempty"`
	Distance  string          `json:"distance,omitempty"`
	Amenities []string        `json:"amenities,omitempty"`
}

// MarketEvent is one demand signal for a target date.
type MarketEvent struct {
	Name        string `json:"name"`
	Date        string `json:"date"` // ISO date (YYYY-MM-DD)
	Impact      string `json:"impact"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Source      string `json:"source,omitempty"`
}

// HotelConfig is the per-request hotel configuration. Zero fields are
// filled by WithDefaults; the engine never mutates the caller's copy.
type HotelConfig struct {
	TotalRooms    int             `json:"totalRooms"`
	BaseOccupancy float64         `json:"baseOccupancy"` // percent, 0–100
	MinPrice      decimal.Decimal `json:"minPrice"`
	MaxPrice      decimal.Decimal `json:"maxPrice"`
	StarRating    int             `json:"starRating"`
}

// WithDefaults returns a copy with unset fields replaced by the standard
// defaults: 100 rooms, 65% base occupancy, $80–$500 price band, 3 stars.
func (c HotelConfig) WithDefaults() HotelConfig {
	out := c
	if out.TotalRooms == 0 {
		out.TotalRooms = 100
	}
	if out.BaseOccupancy == 0 {
		out.BaseOccupancy = 65
	}
	if out.MinPrice.IsZero() {
		out.MinPrice = decimal.NewFromInt(80)
	}
	if out.MaxPrice.IsZero() {
		out.MaxPrice = decimal.NewFromInt(500)
	}
	if out.StarRating == 0 {
		out.StarRating = 3
	}
	return out
}

// CompetitorStats is the robust statistical summary of a competitor batch.
// Count==0 marks the fixed fallback band used when no usable prices exist.
type CompetitorStats struct {
	Count  int             `json:"count"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Avg    decimal.Decimal `json:"avg"`
	Median decimal.Decimal `json:"median"`
	StdDev decimal.Decimal `json:"std_dev"`
	P25    decimal.Decimal `json:"p25"`
	P75    decimal.Decimal `json:"p75"`
}

// DemandAnalysis is the Demand Analyzer output: a single multiplier, a
// categorical level, and the ordered list of contributing factors. Factor
// order is append-only and reproducible — reasoning text depends on it.
type DemandAnalysis struct {
	Multiplier   float64  `json:"total_multiplier"`
	Level        string   `json:"demand_level"` // low|medium|high|peak
	Factors      []string `json:"factors"`
	LeadTimeDays int      `json:"lead_time_days"`
}

// KPISet holds the projected key performance indicators for one
// recommendation. The three revenue figures are mutually consistent:
// rooms_sold = floor(rooms·occ/100), revpar = adr·occ/100,
// projected_revenue = rooms_sold·adr.
type KPISet struct {
	ProjectedOccupancy float64         `json:"projected_occupancy"` // percent
	ADR                decimal.Decimal `json:"adr"`
	RevPAR             decimal.Decimal `json:"revpar"`
	ProjectedRevenue   decimal.Decimal `json:"projected_revenue"`
	RoomsSold          int             `json:"rooms_sold"`
}

// DetailedAnalysis is the narrative presentation layer: free-text sections
// templated from already-computed numbers. Formatting here never feeds back
// into the pricing algorithm.
type DetailedAnalysis struct {
	MarketOverview       string `json:"market_overview"`
	CompetitiveLandscape string `json:"competitive_landscape"`
	DemandDrivers        string `json:"demand_drivers"`
	PricingStrategy      string `json:"pricing_strategy"`
	RiskFactors          string `json:"risk_factors"`
	RevenueOptimization  string `json:"revenue_optimization"`
}

// PricingResult is the engine output: a pure value computed fresh per call.
// The engine owns no state beyond it.
type PricingResult struct {
	RecommendedPrice   decimal.Decimal  `json:"recommended_price"`
	Confidence         float64          `json:"confidence_score"` // 0.0–1.0
	Reasoning          string           `json:"reasoning"`
	MarketPosition     string           `json:"market_position"`
	PricingStrategy    string           `json:"pricing_strategy"` // surge|standard|discount
	DemandLevel        string           `json:"demand_level"`
	DemandDrivers      []string         `json:"demand_drivers"`
	KPIs               KPISet           `json:"kpis"`
	CompetitorAnalysis CompetitorStats  `json:"competitor_analysis"`
	DetailedAnalysis   DetailedAnalysis `json:"detailed_analysis"`
}

// OverrideResult is the rank-based override output.
type OverrideResult struct {
	OverridePrice decimal.Decimal `json:"override_price"`
	MarketRank    int             `json:"market_rank"`
	Positioning   string          `json:"positioning"`
	KPIs          KPISet          `json:"kpis"`
}

// MarketSnapshot is an aggregated acquisition result for one location/date:
// whatever the providers returned before the deadline, deduplicated. May be
// partial or empty — the engine tolerates both.
type MarketSnapshot struct {
	City        string                  `json:"city"`
	Country     string                  `json:"country"`
	Date        string                  `json:"date"`
	Competitors []CompetitorObservation `json:"competitors"`
	Events      []MarketEvent           `json:"events"`
	FetchedAt   time.Time               `json:"fetched_at"`
}

// RecommendationRecord is the persisted form of one pricing run. Written
// fire-and-forget after each recommendation; never read back by the engine.
type RecommendationRecord struct {
	ID         string          `json:"id" db:"id"`
	Location   string          `json:"location" db:"location"`
	TargetDate string          `json:"target_date" db:"target_date"`
	Price      decimal.Decimal `json:"recommended_price" db:"recommended_price"`
	Confidence float64         `json:"confidence" db:"confidence"`
	Occupancy  float64         `json:"occupancy" db:"occupancy"`
	ADR        decimal.Decimal `json:"adr" db:"adr"`
	RevPAR     decimal.Decimal `json:"revpar" db:"revpar"`
	Revenue    decimal.Decimal `json:"revenue" db:"revenue"`
	Reasoning  string          `json:"reasoning" db:"reasoning"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Hotel is a stored hotel profile with its pricing configuration.
type Hotel struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"hotelName" db:"hotel_name"`
	Location  string      `json:"location" db:"location"`
	Config    HotelConfig `json:"config"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}
