package store

import (
	"context"
	"sync"

	"github.com/amplifi/rate-engine/internal/model"
)

// MemoryStore is an in-memory Store used in tests and when no database is
// configured. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	recs      []model.RecommendationRecord
	snapshots []competitorSnapshot
	hotels    []model.Hotel
}

type competitorSnapshot struct {
	location    string
	date        string
	competitors []model.CompetitorObservation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveRecommendation(_ context.Context, rec *model.RecommendationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, *rec)
	return nil
}

func (s *MemoryStore) History(_ context.Context, location string, limit int) ([]model.RecommendationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RecommendationRecord, 0, limit)
	for i := len(s.recs) - 1; i >= 0 && len(out) < limit; i-- {
		if location != "" && s.recs[i].Location != location {
			continue
		}
		out = append(out, s.recs[i])
	}
	return out, nil
}

func (s *MemoryStore) SaveCompetitorSnapshot(_ context.Context, location, date string, competitors []model.CompetitorObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]model.CompetitorObservation, len(competitors))
	copy(cp, competitors)
	s.snapshots = append(s.snapshots, competitorSnapshot{location: location, date: date, competitors: cp})
	return nil
}

func (s *MemoryStore) RecentCompetitors(_ context.Context, location string, limit int) ([]model.CompetitorObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.CompetitorObservation
	taken := 0
	for i := len(s.snapshots) - 1; i >= 0 && taken < limit; i-- {
		if s.snapshots[i].location != location {
			continue
		}
		out = append(out, s.snapshots[i].competitors...)
		taken++
	}
	return out, nil
}

func (s *MemoryStore) CreateHotel(_ context.Context, h *model.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels = append(s.hotels, *h)
	return nil
}

func (s *MemoryStore) ListHotels(_ context.Context) ([]model.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Hotel, len(s.hotels))
	copy(out, s.hotels)
	return out, nil
}
