package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/shopspring/decimal"

	"github.com/amplifi/rate-engine/internal/model"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

// ResearchProvider queries Claude for competitor rates and market events.
// Responses are free text with an embedded JSON payload; malformed output
// degrades to an empty result, never an error the caller must handle.
type ResearchProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *slog.Logger
}

// NewResearchProvider builds the Claude-backed provider. model may be empty.
func NewResearchProvider(apiKey, model string, logger *slog.Logger) *ResearchProvider {
	if model == "" {
		model = defaultClaudeModel
	}
	return &ResearchProvider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 2048,
		logger:    logger,
	}
}

func (p *ResearchProvider) Name() string { return "claude" }

// FetchCompetitors asks Claude for comparable hotels and their nightly rates.
func (p *ResearchProvider) FetchCompetitors(ctx context.Context, q Query) ([]model.CompetitorObservation, error) {
	prompt := fmt.Sprintf(
		`List 8-12 hotels in %s, %s with realistic nightly rates in USD for %s.
Respond with a JSON array only, each element:
{"name": string, "price": number, "stars": number, "brand": string, "distance": string, "amenities": [string]}`,
		q.City, q.Country, q.Date)

	text, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("claude competitor research: %w", err)
	}

	var raw []struct {
		Name      string      `json:"name"`
		Price     json.Number `json:"price"`
		Stars     int         `json:"stars"`
		Brand     string      `json:"brand"`
		Distance  string      `json:"distance"`
		Amenities []string    `json:"amenities"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &raw); err != nil {
		p.logger.Warn("claude returned unparseable competitor payload", "error", err)
		return nil, nil
	}

	out := make([]model.CompetitorObservation, 0, len(raw))
	for _, r := range raw {
		price, err := decimalFromNumber(r.Price)
		if err != nil || r.Name == "" {
			continue
		}
		out = append(out, model.CompetitorObservation{
			Name:      r.Name,
			Price:     price,
			Stars:     r.Stars,
			Brand:     r.Brand,
			Source:    model.EventSourceAI,
			Location:  q.City,
			Distance:  r.Distance,
			Amenities: r.Amenities,
		})
	}
	return out, nil
}

// FetchEvents asks Claude for demand-relevant events around the target date.
func (p *ResearchProvider) FetchEvents(ctx context.Context, q Query) ([]model.MarketEvent, error) {
	prompt := fmt.Sprintf(
		`List notable events (conferences, festivals, concerts, sports) in %s, %s on or near %s that would affect hotel demand.
Respond with a JSON array only, each element:
{"name": string, "date": "YYYY-MM-DD", "impact": "low"|"medium"|"high", "description": string, "type": string}`,
		q.City, q.Country, q.Date)

	text, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("claude event research: %w", err)
	}

	var raw []model.MarketEvent
	if err := json.Unmarshal([]byte(extractJSON(text)), &raw); err != nil {
		p.logger.Warn("claude returned unparseable event payload", "error", err)
		return nil, nil
	}

	out := make([]model.MarketEvent, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" {
			continue
		}
		if e.Impact != model.ImpactLow && e.Impact != model.ImpactMedium && e.Impact != model.ImpactHigh {
			e.Impact = model.ImpactMedium
		}
		e.Source = model.EventSourceAI
		out = append(out, e)
	}
	return out, nil
}

func (p *ResearchProvider) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// decimalFromNumber parses a JSON price that may arrive quoted or bare.
func decimalFromNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Decimal{}, fmt.Errorf("empty price")
	}
	return decimal.NewFromString(n.String())
}

// extractJSON strips markdown code fences and surrounding prose, returning
// the first JSON array or object found in the text.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
		text = strings.TrimPrefix(text, "json")
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return text
	}
	end := strings.LastIndexAny(text, "]}")
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}
