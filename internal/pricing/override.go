package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/model"
	"github.com/amplifi/rate-engine/internal/occupancy"
	"github.com/amplifi/rate-engine/internal/stats"
)

// ErrInvalidRank is returned when the requested market rank is below 1.
var ErrInvalidRank = errors.New("pricing: market rank must be at least 1")

// Positioning labels for the override result, ordered from most to least
// aggressive relative to the market average.
const (
	positioningPremium          = "premium"
	positioningUpscale          = "upscale"
	positioningCompetitive      = "competitive"
	positioningCompetitiveValue = "competitive_value"
	positioningValue            = "value"
)

// rank1Premium and beyondBottomDiscount anchor the out-of-range ranks:
// rank 1 prices 5% above the current leader, a rank past the field prices
// 5% below the cheapest competitor.
var (
	rank1Premium         = decimal.NewFromFloat(1.05)
	beyondBottomDiscount = decimal.NewFromFloat(0.95)
)

// OverridePrice computes the price that places the property at the desired
// rank in the competitor field (rank 1 = most expensive). The anchor is
// clamped to the configured price band, so the achieved rank may differ
// from the requested one in extreme markets.
func OverridePrice(desiredRank int, competitors []model.CompetitorObservation, cfg model.HotelConfig) (model.OverrideResult, error) {
	if desiredRank < 1 {
		return model.OverrideResult{}, fmt.Errorf("%w: got %d", ErrInvalidRank, desiredRank)
	}
	cfg = cfg.WithDefaults()
	if err := validateConfig(cfg); err != nil {
		return model.OverrideResult{}, err
	}

	prices := stats.ValidPrices(competitors)
	if len(prices) == 0 {
		return model.OverrideResult{}, ErrNoCompetitors
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].GreaterThan(prices[j]) })

	price := rankAnchor(desiredRank, prices)
	price = clampPrice(price, cfg.MinPrice, cfg.MaxPrice).Round(2)

	avg := averagePrice(prices)
	positioning, occMult := classifyPositioning(price, avg)

	occ := roundTo(occupancy.Clamp(cfg.BaseOccupancy*occMult), 1)
	return model.OverrideResult{
		OverridePrice: price,
		MarketRank:    desiredRank,
		Positioning:   positioning,
		KPIs:          ComputeKPIs(price, occ, cfg.TotalRooms),
	}, nil
}

// rankAnchor picks the target price for a desired rank against the
// descending-sorted competitor prices. Rank 1 tops the leader by 5%; a rank
// inside the field takes the midpoint of the two adjacent competitors; a
// rank beyond the field undercuts the cheapest by 5%.
func rankAnchor(rank int, prices []decimal.Decimal) decimal.Decimal {
	two := decimal.NewFromInt(2)
	switch {
	case rank == 1:
		return prices[0].Mul(rank1Premium)
	case rank <= len(prices):
		upper, lower := prices[rank-2], prices[rank-1]
		mid := upper.Add(lower).Div(two)
		if !mid.LessThan(upper) {
			// Adjacent competitors tied; slot in just below them.
			return lower.Mul(beyondBottomDiscount)
		}
		return mid
	default:
		return prices[len(prices)-1].Mul(beyondBottomDiscount)
	}
}

func averagePrice(prices []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices))))
}

// classifyPositioning maps the price-to-average ratio into one of five
// positioning bands and its occupancy multiplier. Pricier positions trade
// occupancy for rate.
func classifyPositioning(price, avg decimal.Decimal) (string, float64) {
	if !avg.IsPositive() {
		return positioningCompetitive, 1.00
	}
	ratio := price.Div(avg).InexactFloat64()
	switch {
	case ratio > 1.20:
		return positioningPremium, 0.85
	case ratio > 1.05:
		return positioningUpscale, 0.92
	case ratio < 0.85:
		return positioningValue, 1.15
	case ratio < 0.95:
		return positioningCompetitiveValue, 1.08
	default:
		return positioningCompetitive, 1.00
	}
}
