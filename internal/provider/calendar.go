package provider

import (
	"context"
	"time"

	"github.com/amplifi/rate-engine/internal/model"
)

// CalendarProvider derives demand events from fixed holiday rules. It needs
// no network access and never fails, so it is always registered as the
// baseline event source.
type CalendarProvider struct{}

func NewCalendarProvider() *CalendarProvider { return &CalendarProvider{} }

func (p *CalendarProvider) Name() string { return "calendar" }

// FetchEvents returns rule-derived events for the target date. An
// unparseable date yields no events rather than an error.
func (p *CalendarProvider) FetchEvents(_ context.Context, q Query) ([]model.MarketEvent, error) {
	date, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		return nil, nil
	}

	var events []model.MarketEvent
	add := func(name, impact, description string) {
		events = append(events, model.MarketEvent{
			Name:        name,
			Date:        q.Date,
			Impact:      impact,
			Description: description,
			Type:        "holiday",
			Source:      model.EventSourceCalendar,
		})
	}

	switch {
	case date.Month() == time.December && date.Day() == 24:
		add("Christmas Eve", model.ImpactHigh, "Peak holiday travel night")
	case date.Month() == time.December && date.Day() == 31:
		add("New Year's Eve", model.ImpactHigh, "Year-end celebrations drive citywide demand")
	case date.Month() == time.January && date.Day() == 1:
		add("New Year's Day", model.ImpactMedium, "Holiday travel tail")
	case date.Month() == time.December:
		add("Holiday shopping season", model.ImpactMedium, "December leisure and shopping travel")
	}

	return events, nil
}
