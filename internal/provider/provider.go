// Package provider acquires market data (competitor rates and demand
// events) from external collaborators. Providers are best-effort: any of
// them may return empty or partial results, and the pricing engine never
// depends on acquisition succeeding.
package provider

import (
	"context"

	"github.com/amplifi/rate-engine/internal/model"
)

// Query identifies one market lookup.
type Query struct {
	City    string
	Country string
	Date    string // ISO date (YYYY-MM-DD)
}

// CompetitorProvider fetches competitor rate observations for a market.
type CompetitorProvider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	FetchCompetitors(ctx context.Context, q Query) ([]model.CompetitorObservation, error)
}

// EventProvider fetches demand events for a market date.
type EventProvider interface {
	Name() string
	FetchEvents(ctx context.Context, q Query) ([]model.MarketEvent, error)
}
