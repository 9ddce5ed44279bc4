package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision;
// competitor snapshots and hotel configs are JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveRecommendation(ctx context.Context, rec *model.RecommendationRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO recommendations
		   (id, location, target_date, recommended_price, confidence, occupancy, adr, revpar, revenue, reasoning, created_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5, $6, $7::NUMERIC, $8::NUMERIC, $9::NUMERIC, $10, $11)`,
		rec.ID, rec.Location, rec.TargetDate,
		rec.Price.String(), rec.Confidence, rec.Occupancy,
		rec.ADR.String(), rec.RevPAR.String(), rec.Revenue.String(),
		rec.Reasoning, rec.CreatedAt,
	)
	return err
}

func (s *PostgresStore) History(ctx context.Context, location string, limit int) ([]model.RecommendationRecord, error) {
	query := `SELECT id, location, target_date,
	                 recommended_price::TEXT, confidence, occupancy,
	                 adr::TEXT, revpar::TEXT, revenue::TEXT,
	                 reasoning, created_at
	          FROM recommendations`
	args := []interface{}{limit}
	if location != "" {
		query += ` WHERE location = $2`
		args = append(args, location)
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RecommendationRecord
	for rows.Next() {
		var r model.RecommendationRecord
		var priceS, adrS, revparS, revenueS string
		if err := rows.Scan(&r.ID, &r.Location, &r.TargetDate,
			&priceS, &r.Confidence, &r.Occupancy,
			&adrS, &revparS, &revenueS,
			&r.Reasoning, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Price, _ = decimal.NewFromString(priceS)
		r.ADR, _ = decimal.NewFromString(adrS)
		r.RevPAR, _ = decimal.NewFromString(revparS)
		r.Revenue, _ = decimal.NewFromString(revenueS)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PostgresStore) SaveCompetitorSnapshot(ctx context.Context, location, date string, competitors []model.CompetitorObservation) error {
	payload, err := json.Marshal(competitors)
	if err != nil {
		return fmt.Errorf("marshal competitor snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO competitor_snapshots (location, target_date, competitors, created_at)
		 VALUES ($1, $2, $3::JSONB, NOW())`,
		location, date, payload,
	)
	return err
}

func (s *PostgresStore) RecentCompetitors(ctx context.Context, location string, limit int) ([]model.CompetitorObservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT competitors
		 FROM competitor_snapshots
		 WHERE location = $1
		 ORDER BY created_at DESC LIMIT $2`,
		location, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CompetitorObservation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var batch []model.CompetitorObservation
		if err := json.Unmarshal(payload, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal competitor snapshot: %w", err)
		}
		out = append(out, batch...)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateHotel(ctx context.Context, h *model.Hotel) error {
	cfg, err := json.Marshal(h.Config)
	if err != nil {
		return fmt.Errorf("marshal hotel config: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO hotels (id, hotel_name, location, config, created_at)
		 VALUES ($1, $2, $3, $4::JSONB, $5)`,
		h.ID, h.Name, h.Location, cfg, h.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ListHotels(ctx context.Context) ([]model.Hotel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, hotel_name, location, config, created_at
		 FROM hotels ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hotels []model.Hotel
	for rows.Next() {
		var h model.Hotel
		var cfg []byte
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &cfg, &h.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(cfg, &h.Config); err != nil {
			return nil, fmt.Errorf("unmarshal hotel config %s: %w", h.ID, err)
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}
