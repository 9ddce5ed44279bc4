package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/model"
	"github.com/amplifi/rate-engine/internal/provider"
	"github.com/amplifi/rate-engine/internal/store"
)

// stubFetcher serves a canned market snapshot.
type stubFetcher struct {
	snap model.MarketSnapshot
}

func (f stubFetcher) Fetch(_ context.Context, q provider.Query) model.MarketSnapshot {
	snap := f.snap
	snap.City = q.City
	snap.Country = q.Country
	snap.Date = q.Date
	return snap
}

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", "2026-04-01")
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func newTestEnv(t *testing.T, snap model.MarketSnapshot) (*store.MemoryStore, chi.Router) {
	t.Helper()
	ms := store.NewMemoryStore()
	svc := NewService(ms, stubFetcher{snap: snap}, nil)
	svc.now = func() time.Time { return fixedNow(t) }

	r := chi.NewRouter()
	r.Mount("/api/v1", svc.Routes())
	return ms, r
}

func snapshot(prices ...float64) model.MarketSnapshot {
	var comps []model.CompetitorObservation
	for i, p := range prices {
		comps = append(comps, model.CompetitorObservation{
			Name:   "Hotel " + string(rune('A'+i)),
			Price:  decimal.NewFromFloat(p),
			Source: "test",
		})
	}
	return model.MarketSnapshot{Competitors: comps}
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid response body %q: %v", method, path, w.Body.String(), err)
	}
	return w, env
}

func TestPriceRecommendation(t *testing.T) {
	ms, router := newTestEnv(t, snapshot(180, 200, 220, 240, 260))

	w, env := doJSON(t, router, "POST", "/api/v1/price-recommendation", RecommendationRequest{
		City: "Lisbon", Country: "Portugal", Date: "2026-04-15",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !env.Success {
		t.Fatalf("success = false: %s", env.Error)
	}

	var resp RecommendationResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Location != "Lisbon, Portugal" || resp.Date != "2026-04-15" {
		t.Errorf("identity wrong: %s / %s", resp.Location, resp.Date)
	}
	// Default 3-star config anchors on the median (220) on a neutral date.
	if !resp.RecommendedPrice.Equal(decimal.NewFromInt(220)) {
		t.Errorf("price = %s, want 220", resp.RecommendedPrice)
	}
	if resp.Confidence < 0.45 || resp.Confidence > 0.98 {
		t.Errorf("confidence %.4f outside bounds", resp.Confidence)
	}
	if resp.KPIs.RoomsSold < 1 {
		t.Errorf("kpis missing: %+v", resp.KPIs)
	}

	// Persistence is fire-and-forget; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := ms.History(context.Background(), "Lisbon, Portugal", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) == 1 {
			if !records[0].Price.Equal(resp.RecommendedPrice) {
				t.Errorf("persisted price %s != returned %s", records[0].Price, resp.RecommendedPrice)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("recommendation was never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPriceRecommendation_Validation(t *testing.T) {
	_, router := newTestEnv(t, snapshot(200))

	cases := []RecommendationRequest{
		{Country: "Portugal", Date: "2026-04-15"}, // missing city
		{City: "Lisbon", Date: "15/04/2026"},      // wrong date format
		{City: "Lisbon"},                          // missing date
	}
	for _, req := range cases {
		w, env := doJSON(t, router, "POST", "/api/v1/price-recommendation", req)
		if w.Code != http.StatusBadRequest || env.Success {
			t.Errorf("%+v: status = %d, want 400", req, w.Code)
		}
	}
}

func TestPriceRecommendation_InvalidConfig(t *testing.T) {
	_, router := newTestEnv(t, snapshot(200))

	w, _ := doJSON(t, router, "POST", "/api/v1/price-recommendation", RecommendationRequest{
		City: "Lisbon", Date: "2026-04-15",
		Config: model.HotelConfig{TotalRooms: -10},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPriceOverride(t *testing.T) {
	_, router := newTestEnv(t, snapshot(300, 250, 200))

	w, env := doJSON(t, router, "POST", "/api/v1/price-override", OverrideRequest{
		City: "Lisbon", Date: "2026-04-15", DesiredRank: 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp OverrideResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.OverridePrice.Equal(decimal.NewFromInt(315)) {
		t.Errorf("price = %s, want 315", resp.OverridePrice)
	}
	if resp.Positioning != "premium" {
		t.Errorf("positioning = %q, want premium", resp.Positioning)
	}
}

func TestPriceOverride_NoCompetitors(t *testing.T) {
	_, router := newTestEnv(t, model.MarketSnapshot{})

	w, env := doJSON(t, router, "POST", "/api/v1/price-override", OverrideRequest{
		City: "Lisbon", Date: "2026-04-15", DesiredRank: 1,
	})
	if w.Code != http.StatusNotFound || env.Success {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPriceOverride_BadRank(t *testing.T) {
	_, router := newTestEnv(t, snapshot(200))

	w, _ := doJSON(t, router, "POST", "/api/v1/price-override", OverrideRequest{
		City: "Lisbon", Date: "2026-04-15", DesiredRank: 0,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHotels_CreateAndList(t *testing.T) {
	_, router := newTestEnv(t, snapshot(200))

	w, env := doJSON(t, router, "POST", "/api/v1/hotels", CreateHotelRequest{
		HotelName: "Harbor View", Location: "Lisbon",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var created model.Hotel
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Config.TotalRooms != 100 {
		t.Errorf("defaults not applied: %+v", created)
	}

	w, env = doJSON(t, router, "GET", "/api/v1/hotels", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var hotels []model.Hotel
	if err := json.Unmarshal(env.Data, &hotels); err != nil {
		t.Fatal(err)
	}
	if len(hotels) != 1 || hotels[0].Name != "Harbor View" {
		t.Errorf("hotels = %+v", hotels)
	}

	// Name is required.
	w, _ = doJSON(t, router, "POST", "/api/v1/hotels", CreateHotelRequest{Location: "Lisbon"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", w.Code)
	}
}

func TestCompetitors(t *testing.T) {
	ms, router := newTestEnv(t, snapshot(200))

	w, _ := doJSON(t, router, "GET", "/api/v1/competitors", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing location: status = %d, want 400", w.Code)
	}

	obs := []model.CompetitorObservation{{Name: "Grand Plaza", Price: decimal.NewFromInt(210)}}
	if err := ms.SaveCompetitorSnapshot(context.Background(), "Lisbon", "2026-04-15", obs); err != nil {
		t.Fatal(err)
	}

	w, env := doJSON(t, router, "GET", "/api/v1/competitors?location=Lisbon", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []model.CompetitorObservation
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Grand Plaza" {
		t.Errorf("competitors = %+v", got)
	}
}

func TestPriceHistory_EmptyIsOK(t *testing.T) {
	_, router := newTestEnv(t, snapshot(200))

	w, env := doJSON(t, router, "GET", "/api/v1/price-history?location=Nowhere", nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var records []model.RecommendationRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records = %+v, want empty", records)
	}
}
