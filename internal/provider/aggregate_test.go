package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/model"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubCompetitors struct {
	name string
	out  []model.CompetitorObservation
	err  error
	wait time.Duration
}

func (s *stubCompetitors) Name() string { return s.name }

func (s *stubCompetitors) FetchCompetitors(ctx context.Context, _ Query) ([]model.CompetitorObservation, error) {
	if s.wait > 0 {
		select {
		case <-time.After(s.wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.out, s.err
}

type stubEvents struct {
	name string
	out  []model.MarketEvent
	err  error
}

func (s *stubEvents) Name() string { return s.name }

func (s *stubEvents) FetchEvents(context.Context, Query) ([]model.MarketEvent, error) {
	return s.out, s.err
}

func obs(name string, price float64) model.CompetitorObservation {
	return model.CompetitorObservation{Name: name, Price: decimal.NewFromFloat(price), Source: "test"}
}

func TestFetch_CollectsAllProviders(t *testing.T) {
	agg := NewAggregator(
		[]CompetitorProvider{
			&stubCompetitors{name: "a", out: []model.CompetitorObservation{obs("Grand Plaza", 200)}},
			&stubCompetitors{name: "b", out: []model.CompetitorObservation{obs("Harbor View Inn", 150)}},
		},
		[]EventProvider{
			&stubEvents{name: "c", out: []model.MarketEvent{{Name: "Expo", Impact: model.ImpactMedium}}},
		},
		time.Second, discard(),
	)

	snap := agg.Fetch(context.Background(), Query{City: "Oslo", Country: "Norway", Date: "2026-09-12"})
	if len(snap.Competitors) != 2 {
		t.Errorf("competitors = %d, want 2", len(snap.Competitors))
	}
	if len(snap.Events) != 1 {
		t.Errorf("events = %d, want 1", len(snap.Events))
	}
	if snap.City != "Oslo" || snap.Date != "2026-09-12" {
		t.Errorf("snapshot identity wrong: %+v", snap)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not stamped")
	}
}

func TestFetch_FailedProviderDoesNotPoisonSnapshot(t *testing.T) {
	agg := NewAggregator(
		[]CompetitorProvider{
			&stubCompetitors{name: "bad", err: errors.New("upstream 500")},
			&stubCompetitors{name: "good", out: []model.CompetitorObservation{obs("Grand Plaza", 200)}},
		},
		nil, time.Second, discard(),
	)

	snap := agg.Fetch(context.Background(), Query{City: "Oslo"})
	if len(snap.Competitors) != 1 {
		t.Errorf("competitors = %d, want the surviving provider's 1", len(snap.Competitors))
	}
}

func TestFetch_SlowProviderCutOffAtDeadline(t *testing.T) {
	agg := NewAggregator(
		[]CompetitorProvider{
			&stubCompetitors{name: "slow", wait: 5 * time.Second, out: []model.CompetitorObservation{obs("Late Hotel", 99)}},
			&stubCompetitors{name: "fast", out: []model.CompetitorObservation{obs("Grand Plaza", 200)}},
		},
		nil, 50*time.Millisecond, discard(),
	)

	start := time.Now()
	snap := agg.Fetch(context.Background(), Query{City: "Oslo"})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Fetch did not honor the deadline, took %s", elapsed)
	}
	if len(snap.Competitors) != 1 || snap.Competitors[0].Name != "Grand Plaza" {
		t.Errorf("expected only the fast provider's data, got %+v", snap.Competitors)
	}
}

func TestDedupeCompetitors(t *testing.T) {
	in := []model.CompetitorObservation{
		obs("Hilton Garden Inn", 210),
		obs("Hilton Garden Inn Hotel", 215), // same property, suffix noise
		obs("Harbor View Inn", 150),
		obs("harbor view inn", 155), // case-only duplicate
		obs("Grand Plaza", 300),
	}
	out := dedupeCompetitors(in)
	if len(out) != 3 {
		t.Fatalf("deduped to %d, want 3: %+v", len(out), out)
	}
	// First occurrence wins.
	if !out[0].Price.Equal(decimal.NewFromInt(210)) {
		t.Errorf("first occurrence should win, got %s", out[0].Price)
	}
}

func TestDedupeEvents(t *testing.T) {
	in := []model.MarketEvent{
		{Name: "Jazz Festival", Source: model.EventSourceSearch},
		{Name: "jazz festival", Source: model.EventSourceCalendar},
		{Name: "Tech Summit"},
		{Name: "  "},
	}
	out := dedupeEvents(in)
	if len(out) != 2 {
		t.Fatalf("deduped to %d, want 2: %+v", len(out), out)
	}
	if out[0].Source != model.EventSourceSearch {
		t.Error("first occurrence should win")
	}
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Grand Plaza Hotel", "Grand Plaza", 1.0},
		{"Grand Plaza", "Harbor View", 0.0},
		{"The Ritz-Carlton Downtown", "Ritz Carlton", 1.0},
		{"Hotel A", "Hotel B", 0.5},
	}
	for _, tt := range tests {
		got := tokenOverlap(nameTokens(tt.a), nameTokens(tt.b))
		if got != tt.want {
			t.Errorf("overlap(%q, %q) = %.2f, want %.2f", tt.a, tt.b, got, tt.want)
		}
	}
}
