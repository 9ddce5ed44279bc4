// Package store defines the persistence interface for the rate engine.
// Implementations include PostgreSQL (source of truth), Redis (snapshot
// cache), and in-memory (for testing). Persistence is write-behind: the
// pricing path never waits on or fails because of the store.
package store

import (
	"context"

	"github.com/amplifi/rate-engine/internal/model"
)

// Store is the persistence interface.
type Store interface {
	// SaveRecommendation appends one pricing run to the history.
	SaveRecommendation(ctx context.Context, rec *model.RecommendationRecord) error

	// History returns the most recent recommendations for a location,
	// newest first. An empty location returns across all locations.
	History(ctx context.Context, location string, limit int) ([]model.RecommendationRecord, error)

	// SaveCompetitorSnapshot records the competitor set observed for a
	// location and stay date.
	SaveCompetitorSnapshot(ctx context.Context, location, date string, competitors []model.CompetitorObservation) error

	// RecentCompetitors returns the most recently observed competitors
	// for a location, newest snapshot first.
	RecentCompetitors(ctx context.Context, location string, limit int) ([]model.CompetitorObservation, error)

	// CreateHotel persists a hotel profile with its pricing configuration.
	CreateHotel(ctx context.Context, h *model.Hotel) error

	// ListHotels returns all stored hotel profiles.
	ListHotels(ctx context.Context) ([]model.Hotel, error)
}
