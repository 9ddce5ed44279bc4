// Package recommend provides the HTTP handlers for price recommendations,
// rank-based overrides, recommendation history, and hotel profiles.
//
// Handlers acquire a market snapshot through the injected fetcher, run the
// pricing engine, and persist results in the background: a slow or failing
// store never delays or fails the pricing response.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amplifi/rate-engine/internal/metrics"
	"github.com/amplifi/rate-engine/internal/model"
	"github.com/amplifi/rate-engine/internal/pricing"
	"github.com/amplifi/rate-engine/internal/provider"
	"github.com/amplifi/rate-engine/internal/store"
)

// Service handles pricing API requests.
type Service struct {
	store    store.Store
	fetcher  store.SnapshotFetcher
	validate *validator.Validate
	wsHub    *WSHub // optional, for real-time dashboard broadcasts

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewService creates the pricing API service. Pass nil for hub if WebSocket
// broadcasting is not needed.
func NewService(st store.Store, fetcher store.SnapshotFetcher, hub *WSHub) *Service {
	return &Service{
		store:    st,
		fetcher:  fetcher,
		validate: validator.New(),
		wsHub:    hub,
		now:      time.Now,
	}
}

// Routes returns the API router for mounting under /api/v1.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/price-recommendation", s.PriceRecommendation)
	r.Post("/price-override", s.PriceOverride)
	r.Get("/price-history", s.PriceHistory)
	r.Get("/competitors", s.Competitors)
	r.Get("/hotels", s.ListHotels)
	r.Post("/hotels", s.CreateHotel)
	if s.wsHub != nil {
		r.Get("/ws", s.wsHub.HandleWS)
	}
	return r
}

// --- Request/Response types ---

// RecommendationRequest is the JSON body for POST /price-recommendation.
type RecommendationRequest struct {
	City    string            `json:"city" validate:"required"`
	Country string            `json:"country"`
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Config  model.HotelConfig `json:"config"` // zero fields take defaults
}

// OverrideRequest is the JSON body for POST /price-override.
type OverrideRequest struct {
	City        string            `json:"city" validate:"required"`
	Country     string            `json:"country"`
	Date        string            `json:"date" validate:"required,datetime=2006-01-02"`
	DesiredRank int               `json:"desiredRank" validate:"required,min=1"`
	Config      model.HotelConfig `json:"config"`
}

// CreateHotelRequest is the JSON body for POST /hotels.
type CreateHotelRequest struct {
	HotelName string            `json:"hotelName" validate:"required"`
	Location  string            `json:"location" validate:"required"`
	Config    model.HotelConfig `json:"config"`
}

// RecommendationResponse wraps the engine output with the request identity.
type RecommendationResponse struct {
	Location string `json:"location"`
	Date     string `json:"date"`
	model.PricingResult
}

// OverrideResponse wraps the override output with the request identity.
type OverrideResponse struct {
	Location string `json:"location"`
	Date     string `json:"date"`
	model.OverrideResult
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// --- HTTP Handlers ---

// PriceRecommendation handles POST /api/v1/price-recommendation.
func (s *Service) PriceRecommendation(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	location := locationLabel(req.City, req.Country)
	snap := s.fetcher.Fetch(ctx, provider.Query{City: req.City, Country: req.Country, Date: req.Date})

	start := time.Now()
	result, err := pricing.ComputePrice(location, date, s.now(), req.Config, snap.Competitors, snap.Events)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidConfig) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "pricing failed", http.StatusInternalServerError)
		return
	}
	metrics.RecommendationsTotal.WithLabelValues(result.PricingStrategy).Inc()
	metrics.RecommendationLatency.Observe(time.Since(start).Seconds())

	slog.Info("recommendation produced",
		"location", location,
		"date", req.Date,
		"price", result.RecommendedPrice.String(),
		"strategy", result.PricingStrategy,
		"demand", result.DemandLevel,
		"confidence", result.Confidence,
		"competitors", result.CompetitorAnalysis.Count,
	)

	s.persistRecommendation(location, req.Date, result, snap.Competitors)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:           "recommendation",
			Location:       location,
			Date:           req.Date,
			Price:          result.RecommendedPrice.String(),
			Confidence:     result.Confidence,
			Strategy:       result.PricingStrategy,
			MarketPosition: result.MarketPosition,
		})
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		Location:      location,
		Date:          req.Date,
		PricingResult: result,
	})
}

// PriceOverride handles POST /api/v1/price-override.
func (s *Service) PriceOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	location := locationLabel(req.City, req.Country)
	snap := s.fetcher.Fetch(ctx, provider.Query{City: req.City, Country: req.Country, Date: req.Date})

	result, err := pricing.OverridePrice(req.DesiredRank, snap.Competitors, req.Config)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrNoCompetitors):
			writeError(w, "no competitor data available for "+location, http.StatusNotFound)
		case errors.Is(err, pricing.ErrInvalidRank), errors.Is(err, pricing.ErrInvalidConfig):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			writeError(w, "override failed", http.StatusInternalServerError)
		}
		return
	}
	metrics.OverridesTotal.Inc()

	slog.Info("price override computed",
		"location", location,
		"date", req.Date,
		"rank", req.DesiredRank,
		"price", result.OverridePrice.String(),
		"positioning", result.Positioning,
	)

	writeJSON(w, http.StatusOK, OverrideResponse{
		Location:       location,
		Date:           req.Date,
		OverrideResult: result,
	})
}

// PriceHistory handles GET /api/v1/price-history?location=&limit=.
func (s *Service) PriceHistory(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	limit := queryLimit(r, 20)

	records, err := s.store.History(r.Context(), location, limit)
	if err != nil {
		writeError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.RecommendationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Competitors handles GET /api/v1/competitors?location=&limit=.
func (s *Service) Competitors(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		writeError(w, "location is required", http.StatusBadRequest)
		return
	}
	limit := queryLimit(r, 5)

	competitors, err := s.store.RecentCompetitors(r.Context(), location, limit)
	if err != nil {
		writeError(w, "failed to load competitors", http.StatusInternalServerError)
		return
	}
	if competitors == nil {
		competitors = []model.CompetitorObservation{}
	}
	writeJSON(w, http.StatusOK, competitors)
}

// CreateHotel handles POST /api/v1/hotels.
func (s *Service) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var req CreateHotelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hotel := &model.Hotel{
		ID:        uuid.New().String(),
		Name:      req.HotelName,
		Location:  req.Location,
		Config:    req.Config.WithDefaults(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateHotel(r.Context(), hotel); err != nil {
		writeError(w, "failed to save hotel", http.StatusInternalServerError)
		return
	}

	slog.Info("hotel created", "id", hotel.ID, "name", hotel.Name, "location", hotel.Location)
	writeJSON(w, http.StatusCreated, hotel)
}

// ListHotels handles GET /api/v1/hotels.
func (s *Service) ListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := s.store.ListHotels(r.Context())
	if err != nil {
		writeError(w, "failed to list hotels", http.StatusInternalServerError)
		return
	}
	if hotels == nil {
		hotels = []model.Hotel{}
	}
	writeJSON(w, http.StatusOK, hotels)
}

// persistRecommendation writes the run to the store in the background.
// Failures are logged and counted, never surfaced to the caller.
func (s *Service) persistRecommendation(location, date string, res model.PricingResult, competitors []model.CompetitorObservation) {
	rec := &model.RecommendationRecord{
		ID:         uuid.New().String(),
		Location:   location,
		TargetDate: date,
		Price:      res.RecommendedPrice,
		Confidence: res.Confidence,
		Occupancy:  res.KPIs.ProjectedOccupancy,
		ADR:        res.KPIs.ADR,
		RevPAR:     res.KPIs.RevPAR,
		Revenue:    res.KPIs.ProjectedRevenue,
		Reasoning:  res.Reasoning,
		CreatedAt:  s.now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.SaveRecommendation(ctx, rec); err != nil {
			metrics.PersistenceFailures.WithLabelValues("recommendation").Inc()
			slog.Error("failed to persist recommendation", "location", location, "err", err)
		}
		if len(competitors) > 0 {
			if err := s.store.SaveCompetitorSnapshot(ctx, location, date, competitors); err != nil {
				metrics.PersistenceFailures.WithLabelValues("competitor_snapshot").Inc()
				slog.Error("failed to persist competitor snapshot", "location", location, "err", err)
			}
		}
	}()
}

func locationLabel(city, country string) string {
	if country == "" {
		return city
	}
	return city + ", " + country
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	if n > 100 {
		return 100
	}
	return n
}

// writeJSON writes a success envelope.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}
