package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/model"
)

func rec(location string, price float64) *model.RecommendationRecord {
	return &model.RecommendationRecord{
		ID:         uuid.NewString(),
		Location:   location,
		TargetDate: "2026-09-12",
		Price:      decimal.NewFromFloat(price),
		Confidence: 0.72,
		Occupancy:  68.5,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestMemoryStore_HistoryNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.SaveRecommendation(ctx, rec("Lisbon", 100+float64(i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveRecommendation(ctx, rec("Porto", 250)); err != nil {
		t.Fatal(err)
	}

	got, err := s.History(ctx, "Lisbon", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("history length = %d, want 3", len(got))
	}
	// Newest first: prices 104, 103, 102.
	for i, want := range []float64{104, 103, 102} {
		if !got[i].Price.Equal(decimal.NewFromFloat(want)) {
			t.Errorf("history[%d].Price = %s, want %.0f", i, got[i].Price, want)
		}
	}

	all, err := s.History(ctx, "", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Errorf("unfiltered history = %d records, want 6", len(all))
	}
}

func TestMemoryStore_RecentCompetitors(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	older := []model.CompetitorObservation{{Name: "Old Inn", Price: decimal.NewFromInt(120)}}
	newer := []model.CompetitorObservation{
		{Name: "Grand Plaza", Price: decimal.NewFromInt(210)},
		{Name: "Harbor View", Price: decimal.NewFromInt(180)},
	}
	if err := s.SaveCompetitorSnapshot(ctx, "Lisbon", "2026-09-11", older); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveCompetitorSnapshot(ctx, "Lisbon", "2026-09-12", newer); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveCompetitorSnapshot(ctx, "Porto", "2026-09-12", older); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentCompetitors(ctx, "Lisbon", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Grand Plaza" {
		t.Errorf("expected the newest Lisbon snapshot, got %+v", got)
	}
}

func TestMemoryStore_Hotels(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		h := &model.Hotel{
			ID:       uuid.NewString(),
			Name:     fmt.Sprintf("Hotel %d", i),
			Location: "Lisbon",
			Config:   model.HotelConfig{TotalRooms: 80 + i},
		}
		if err := s.CreateHotel(ctx, h); err != nil {
			t.Fatal(err)
		}
	}

	hotels, err := s.ListHotels(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(hotels) != 3 {
		t.Fatalf("hotels = %d, want 3", len(hotels))
	}
	if hotels[0].Config.TotalRooms != 80 {
		t.Errorf("insertion order not preserved: %+v", hotels[0])
	}
}
