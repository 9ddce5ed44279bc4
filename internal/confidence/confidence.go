// Package confidence scores the trustworthiness of a pricing recommendation
// from data-quality signals. The score is a weighted average of six
// independently bounded factors, clamped to [0.45, 0.98] — never 0 or 1,
// reflecting irreducible uncertainty.
//
// The scorer is deterministic: identical inputs produce identical scores.
// The only time-like input is the explicit lead time in days, used as the
// staleness horizon for the freshness decay (a price scraped today predicts
// a date 60 days out less well than tomorrow's).
package confidence

import (
	"math"

	"github.com/amplifi/rate-engine/internal/model"
	"github.com/amplifi/rate-engine/internal/stats"
)

// Final score clamp bounds.
const (
	MinScore = 0.45
	MaxScore = 0.98
)

// maxSources is the assumed number of possible competitor data origins.
const maxSources = 7

// factorWeights matches the factor order: diversity, sample size, price
// quality, freshness, event quality, cross-source consistency.
var factorWeights = [6]float64{1.5, 1.2, 1.3, 1.0, 1.1, 1.4}

// Score computes the 0.0–1.0 confidence score for a recommendation.
func Score(competitors []model.CompetitorObservation, events []model.MarketEvent, leadTimeDays int) float64 {
	factors := [6]float64{
		sourceDiversity(competitors),
		sampleSize(len(competitors)),
		priceQuality(competitors),
		freshness(leadTimeDays),
		eventQuality(events),
		crossSourceConsistency(competitors),
	}

	var weighted, total float64
	for i, f := range factors {
		weighted += f * factorWeights[i]
		total += factorWeights[i]
	}
	score := weighted / total

	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// sourceDiversity scales the distinct-source count into [0.50, 0.95].
func sourceDiversity(competitors []model.CompetitorObservation) float64 {
	seen := make(map[string]struct{})
	for _, c := range competitors {
		if c.Source != "" {
			seen[c.Source] = struct{}{}
		}
	}
	n := len(seen)
	if n > maxSources {
		n = maxSources
	}
	return 0.50 + 0.45*float64(n)/maxSources
}

// sampleSize scales the competitor count logarithmically: diminishing
// returns past ~20 observations.
func sampleSize(n int) float64 {
	if n == 0 {
		return 0.25
	}
	frac := math.Log(float64(n)+1) / math.Log(20)
	if frac > 1 {
		frac = 1
	}
	s := 0.35 + 0.50*frac
	if s > 0.95 {
		return 0.95
	}
	return s
}

// priceQuality scores the coefficient of variation of valid prices.
// A realistic market spread (CV 0.15–0.60) scores highest; implausibly
// tight or wild dispersion scores low.
func priceQuality(competitors []model.CompetitorObservation) float64 {
	if len(competitors) == 0 {
		return 0.20
	}
	prices := stats.ValidPrices(competitors)
	if len(prices) < 2 {
		return 0.30
	}

	var sum float64
	for _, p := range prices {
		sum += p.InexactFloat64()
	}
	mean := sum / float64(len(prices))
	if mean <= 0 {
		return 0.30
	}
	var sq float64
	for _, p := range prices {
		d := p.InexactFloat64() - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(prices))) / mean

	switch {
	case cv >= 0.15 && cv <= 0.60:
		return 0.90
	case cv >= 0.05 && cv <= 0.80:
		return 0.65
	default:
		return 0.45
	}
}

// freshness decays exponentially with the staleness horizon: 0.95 × 0.85^(days/7).
func freshness(days int) float64 {
	if days < 0 {
		days = 0
	}
	return 0.95 * math.Pow(0.85, float64(days)/7)
}

// eventQuality weights live search-sourced events above calendar-rule and
// AI-inferred ones. No events at all is a neutral 0.55 baseline.
func eventQuality(events []model.MarketEvent) float64 {
	if len(events) == 0 {
		return 0.55
	}
	score := 0.55
	for _, e := range events {
		if e.Source == model.EventSourceSearch {
			score += 0.12
		} else {
			score += 0.05
		}
	}
	if score > 0.95 {
		return 0.95
	}
	return score
}

// crossSourceConsistency compares per-source average prices. Agreement
// between independent sources raises confidence; with fewer than two
// sources or three competitors there is nothing to compare.
func crossSourceConsistency(competitors []model.CompetitorObservation) float64 {
	type agg struct {
		sum float64
		n   int
	}
	bySource := make(map[string]*agg)
	var overall agg

	for _, c := range competitors {
		if c.Source == "" || !c.Price.GreaterThan(stats.NoiseFloor) {
			continue
		}
		p := c.Price.InexactFloat64()
		a, ok := bySource[c.Source]
		if !ok {
			a = &agg{}
			bySource[c.Source] = a
		}
		a.sum += p
		a.n++
		overall.sum += p
		overall.n++
	}

	if len(bySource) < 2 || overall.n < 3 {
		return 0.65
	}

	overallAvg := overall.sum / float64(overall.n)
	var maxRelDev float64
	for _, a := range bySource {
		dev := math.Abs(a.sum/float64(a.n)-overallAvg) / overallAvg
		if dev > maxRelDev {
			maxRelDev = dev
		}
	}

	score := 0.95 - 1.5*maxRelDev
	if score < 0.50 {
		return 0.50
	}
	return score
}
