package provider

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amplifi/rate-engine/internal/metrics"
	"github.com/amplifi/rate-engine/internal/model"
)

// dedupeOverlap is the normalized-name token overlap above which two
// competitor observations are treated as the same property.
const dedupeOverlap = 0.6

// Aggregator fans out to all registered providers under a shared deadline
// and assembles whatever returned in time into one market snapshot.
// Provider failures are logged and counted, never propagated: an empty
// snapshot is a valid result.
type Aggregator struct {
	competitors []CompetitorProvider
	events      []EventProvider
	timeout     time.Duration
	logger      *slog.Logger
}

// NewAggregator builds an aggregator over the given providers.
func NewAggregator(competitors []CompetitorProvider, events []EventProvider, timeout time.Duration, logger *slog.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Aggregator{
		competitors: competitors,
		events:      events,
		timeout:     timeout,
		logger:      logger,
	}
}

// Fetch queries every provider concurrently and returns the deduplicated
// snapshot of everything that arrived before the deadline.
func (a *Aggregator) Fetch(ctx context.Context, q Query) model.MarketSnapshot {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		competitors []model.CompetitorObservation
		events      []model.MarketEvent
	)

	for _, p := range a.competitors {
		wg.Add(1)
		go func(p CompetitorProvider) {
			defer wg.Done()
			got, err := p.FetchCompetitors(ctx, q)
			if err != nil {
				metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
				a.logger.Warn("competitor provider failed", "provider", p.Name(), "city", q.City, "error", err)
				return
			}
			mu.Lock()
			competitors = append(competitors, got...)
			mu.Unlock()
		}(p)
	}

	for _, p := range a.events {
		wg.Add(1)
		go func(p EventProvider) {
			defer wg.Done()
			got, err := p.FetchEvents(ctx, q)
			if err != nil {
				metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
				a.logger.Warn("event provider failed", "provider", p.Name(), "city", q.City, "error", err)
				return
			}
			mu.Lock()
			events = append(events, got...)
			mu.Unlock()
		}(p)
	}

	wg.Wait()

	return model.MarketSnapshot{
		City:        q.City,
		Country:     q.Country,
		Date:        q.Date,
		Competitors: dedupeCompetitors(competitors),
		Events:      dedupeEvents(events),
		FetchedAt:   time.Now().UTC(),
	}
}

// dedupeCompetitors drops observations whose normalized name substantially
// overlaps an earlier one ("Hilton Garden Inn" vs "Hilton Garden Inn Hotel").
// First occurrence wins, so provider registration order sets precedence.
func dedupeCompetitors(in []model.CompetitorObservation) []model.CompetitorObservation {
	out := make([]model.CompetitorObservation, 0, len(in))
	var kept [][]string
	for _, c := range in {
		tokens := nameTokens(c.Name)
		if len(tokens) == 0 {
			continue
		}
		dup := false
		for _, k := range kept {
			if tokenOverlap(tokens, k) >= dedupeOverlap {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, tokens)
		out = append(out, c)
	}
	return out
}

// dedupeEvents keeps the first event per lowercased name.
func dedupeEvents(in []model.MarketEvent) []model.MarketEvent {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.MarketEvent, 0, len(in))
	for _, e := range in {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// nameTokens normalizes a property name to lowercase word tokens.
func nameTokens(name string) []string {
	lower := strings.ToLower(name)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// tokenOverlap is the share of the smaller token set present in the other.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	var common int
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			common++
		}
	}
	smaller := len(set)
	if len(seen) < smaller {
		smaller = len(seen)
	}
	return float64(common) / float64(smaller)
}
