package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amplifi/rate-engine/internal/model"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// highImpactKeywords promote a search hit to a high-impact event.
var highImpactKeywords = []string{
	"festival", "concert", "championship", "world cup", "summit",
	"convention", "olympics", "grand prix",
}

// SearchProvider discovers demand events via the Tavily web search API.
type SearchProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSearchProvider builds the Tavily-backed event provider.
func NewSearchProvider(apiKey string, logger *slog.Logger) *SearchProvider {
	return &SearchProvider{
		apiKey:     apiKey,
		baseURL:    tavilyEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (p *SearchProvider) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// FetchEvents searches for events around the target date and maps hits to
// market events. Impact is keyword-derived; everything else is medium.
func (p *SearchProvider) FetchEvents(ctx context.Context, q Query) ([]model.MarketEvent, error) {
	query := fmt.Sprintf("events concerts conferences in %s %s on %s", q.City, q.Country, q.Date)
	body, err := json.Marshal(tavilyRequest{APIKey: p.apiKey, Query: query, MaxResults: 5})
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("tavily search: unexpected status %d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily response: %w", err)
	}

	events := make([]model.MarketEvent, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Title == "" {
			continue
		}
		events = append(events, model.MarketEvent{
			Name:        r.Title,
			Date:        q.Date,
			Impact:      classifyImpact(r.Title + " " + r.Content),
			Description: truncate(r.Content, 200),
			Type:        "search_result",
			Source:      model.EventSourceSearch,
		})
	}
	return events, nil
}

func classifyImpact(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range highImpactKeywords {
		if strings.Contains(lower, kw) {
			return model.ImpactHigh
		}
	}
	return model.ImpactMedium
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
