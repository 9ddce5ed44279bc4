// Package demand reduces market events plus a target date into a single
// demand multiplier, a categorical demand level, and an ordered list of
// contributing factors.
//
// The rule order and thresholds are load-bearing: factors append in
// evaluation order and the reasoning text downstream depends on it. The
// reference time is an explicit parameter — never the wall clock — so the
// analysis is reproducible.
package demand

import (
	"fmt"
	"time"

	"github.com/amplifi/rate-engine/internal/model"
)

// Demand levels, from weakest to strongest pressure.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
	LevelPeak   = "peak"
)

// weekdayMultipliers is the fixed weekly demand table.
var weekdayMultipliers = map[time.Weekday]float64{
	time.Monday:    0.95,
	time.Tuesday:   0.98,
	time.Wednesday: 1.00,
	time.Thursday:  1.05,
	time.Friday:    1.20,
	time.Saturday:  1.25,
	time.Sunday:    1.10,
}

// Analyze evaluates the demand rules in order: event impact, day of week,
// season, lead time. Each rule independently multiplies into the total.
func Analyze(target, now time.Time, events []model.MarketEvent) model.DemandAnalysis {
	analysis := model.DemandAnalysis{
		Multiplier:   1.0,
		Level:        LevelMedium,
		LeadTimeDays: int(target.Sub(now).Hours() / 24),
	}

	// 1. Event impact.
	var high, medium int
	for _, e := range events {
		switch e.Impact {
		case model.ImpactHigh:
			high++
		case model.ImpactMedium:
			medium++
		}
	}
	switch {
	case high > 0:
		analysis.Multiplier *= 1.25 + 0.1*float64(high)
		analysis.Level = LevelPeak
		analysis.Factors = append(analysis.Factors, fmt.Sprintf("%d high-impact events", high))
	case medium > 0:
		analysis.Multiplier *= 1.10 + 0.05*float64(medium)
		analysis.Level = LevelHigh
		analysis.Factors = append(analysis.Factors, fmt.Sprintf("%d medium-impact events", medium))
	}

	// 2. Day of week.
	wd := target.Weekday()
	analysis.Multiplier *= weekdayMultipliers[wd]
	if wd == time.Friday || wd == time.Saturday {
		analysis.Factors = append(analysis.Factors, "Weekend demand")
	}

	// 3. Season.
	switch target.Month() {
	case time.June, time.July, time.August:
		analysis.Multiplier *= 1.15
		analysis.Factors = append(analysis.Factors, "Summer season")
	case time.December:
		analysis.Multiplier *= 1.20
		analysis.Factors = append(analysis.Factors, "Holiday season")
	case time.January, time.February:
		analysis.Multiplier *= 0.90
		analysis.Factors = append(analysis.Factors, "Off-season")
	}

	// 4. Lead time.
	switch {
	case analysis.LeadTimeDays >= 0 && analysis.LeadTimeDays <= 3:
		analysis.Multiplier *= 1.15
		analysis.Factors = append(analysis.Factors, "Last-minute booking")
	case analysis.LeadTimeDays > 60:
		analysis.Multiplier *= 0.95
		analysis.Factors = append(analysis.Factors, "Advance booking")
	}

	return analysis
}
