package demand

import (
	"math"
	"testing"
	"time"

	"github.com/amplifi/rate-engine/internal/model"
)

// Fixed reference dates. 2026-04-15 is a Wednesday in a neutral month, so
// with no events and a mid-range lead time every rule is a no-op.
var (
	neutralDate = time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	neutralNow  = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected multiplier %.4f, got %.4f", want, got)
	}
}

func highEvents(n int) []model.MarketEvent {
	events := make([]model.MarketEvent, n)
	for i := range events {
		events[i] = model.MarketEvent{Name: "Conference", Impact: model.ImpactHigh}
	}
	return events
}

func TestAnalyze_NeutralBaseline(t *testing.T) {
	a := Analyze(neutralDate, neutralNow, nil)
	approx(t, a.Multiplier, 1.0)
	if a.Level != LevelMedium {
		t.Errorf("expected level=medium, got %s", a.Level)
	}
	if len(a.Factors) != 0 {
		t.Errorf("expected no factors at baseline, got %v", a.Factors)
	}
}

func TestAnalyze_HighImpactEvents(t *testing.T) {
	a := Analyze(neutralDate, neutralNow, highEvents(2))
	// 1.25 + 0.1×2 = 1.45
	approx(t, a.Multiplier, 1.45)
	if a.Level != LevelPeak {
		t.Errorf("expected level=peak, got %s", a.Level)
	}
	if len(a.Factors) != 1 || a.Factors[0] != "2 high-impact events" {
		t.Errorf("unexpected factors: %v", a.Factors)
	}
}

func TestAnalyze_MediumImpactEvents(t *testing.T) {
	events := []model.MarketEvent{
		{Name: "Festival", Impact: model.ImpactMedium},
		{Name: "Expo", Impact: model.ImpactMedium},
		{Name: "Fair", Impact: model.ImpactMedium},
	}
	a := Analyze(neutralDate, neutralNow, events)
	// 1.10 + 0.05×3 = 1.25
	approx(t, a.Multiplier, 1.25)
	if a.Level != LevelHigh {
		t.Errorf("expected level=high, got %s", a.Level)
	}
	if a.Factors[0] != "3 medium-impact events" {
		t.Errorf("unexpected factors: %v", a.Factors)
	}
}

func TestAnalyze_HighOutranksMedium(t *testing.T) {
	events := []model.MarketEvent{
		{Name: "Summit", Impact: model.ImpactHigh},
		{Name: "Festival", Impact: model.ImpactMedium},
	}
	a := Analyze(neutralDate, neutralNow, events)
	// Only the high branch applies: 1.25 + 0.1×1 = 1.35.
	approx(t, a.Multiplier, 1.35)
	if a.Level != LevelPeak {
		t.Errorf("expected level=peak, got %s", a.Level)
	}
}

func TestAnalyze_LowImpactIsBaseline(t *testing.T) {
	events := []model.MarketEvent{{Name: "Meetup", Impact: model.ImpactLow}}
	a := Analyze(neutralDate, neutralNow, events)
	approx(t, a.Multiplier, 1.0)
	if a.Level != LevelMedium {
		t.Errorf("expected level=medium, got %s", a.Level)
	}
}

func TestAnalyze_WeekdayTable(t *testing.T) {
	// Week of 2026-04-13 (Monday) through 2026-04-19 (Sunday).
	expected := []float64{0.95, 0.98, 1.00, 1.05, 1.20, 1.25, 1.10}
	for i, want := range expected {
		date := time.Date(2026, 4, 13+i, 0, 0, 0, 0, time.UTC)
		a := Analyze(date, neutralNow, nil)
		approx(t, a.Multiplier, want)
	}
}

func TestAnalyze_WeekendFactor(t *testing.T) {
	friday := time.Date(2026, 4, 17, 0, 0, 0, 0, time.UTC)
	a := Analyze(friday, neutralNow, nil)
	if len(a.Factors) != 1 || a.Factors[0] != "Weekend demand" {
		t.Errorf("expected weekend factor on Friday, got %v", a.Factors)
	}

	sunday := time.Date(2026, 4, 19, 0, 0, 0, 0, time.UTC)
	a = Analyze(sunday, neutralNow, nil)
	if len(a.Factors) != 0 {
		t.Errorf("Sunday should not append the weekend factor, got %v", a.Factors)
	}
}

func TestAnalyze_Seasons(t *testing.T) {
	tests := []struct {
		date   time.Time
		mult   float64
		factor string
	}{
		// All Wednesdays, so the DOW multiplier is 1.0.
		{time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), 1.15, "Summer season"},
		{time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC), 1.20, "Holiday season"},
		{time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), 0.90, "Off-season"},
	}
	for _, tt := range tests {
		now := tt.date.AddDate(0, 0, -14)
		a := Analyze(tt.date, now, nil)
		approx(t, a.Multiplier, tt.mult)
		if len(a.Factors) != 1 || a.Factors[0] != tt.factor {
			t.Errorf("%s: expected factor %q, got %v", tt.date.Format("2006-01-02"), tt.factor, a.Factors)
		}
	}
}

func TestAnalyze_LeadTime(t *testing.T) {
	lastMinute := Analyze(neutralDate, neutralDate.AddDate(0, 0, -1), nil)
	approx(t, lastMinute.Multiplier, 1.15)
	if lastMinute.Factors[len(lastMinute.Factors)-1] != "Last-minute booking" {
		t.Errorf("expected last-minute factor, got %v", lastMinute.Factors)
	}

	advance := Analyze(neutralDate, neutralDate.AddDate(0, 0, -90), nil)
	approx(t, advance.Multiplier, 0.95)
	if advance.Factors[len(advance.Factors)-1] != "Advance booking" {
		t.Errorf("expected advance factor, got %v", advance.Factors)
	}

	mid := Analyze(neutralDate, neutralDate.AddDate(0, 0, -30), nil)
	approx(t, mid.Multiplier, 1.0)
}

func TestAnalyze_FactorOrderReproducible(t *testing.T) {
	// Saturday in December, one high-impact event, same-day booking:
	// every rule fires, in the documented order.
	date := time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC) // Saturday
	a := Analyze(date, date, highEvents(1))
	want := []string{"1 high-impact events", "Weekend demand", "Holiday season", "Last-minute booking"}
	if len(a.Factors) != len(want) {
		t.Fatalf("expected %d factors, got %v", len(want), a.Factors)
	}
	for i := range want {
		if a.Factors[i] != want[i] {
			t.Errorf("factor[%d]: expected %q, got %q", i, want[i], a.Factors[i])
		}
	}
	// 1.35 × 1.25 × 1.20 × 1.15
	approx(t, a.Multiplier, 1.35*1.25*1.20*1.15)
	if a.Level != LevelPeak {
		t.Errorf("expected level=peak, got %s", a.Level)
	}
}

func TestAnalyze_MoreHighImpactNeverLowersMultiplier(t *testing.T) {
	prev := 0.0
	for n := 0; n <= 6; n++ {
		a := Analyze(neutralDate, neutralNow, highEvents(n))
		if a.Multiplier < prev {
			t.Fatalf("multiplier decreased from %.4f to %.4f at %d high-impact events",
				prev, a.Multiplier, n)
		}
		prev = a.Multiplier
	}
}
