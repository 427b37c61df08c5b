// Package ics serializes extracted events into an iCalendar feed so
// organizations can subscribe to the dates detected in their uploads.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"posterforge/internal/domain"
)

// dateLayouts covers the formats the vision extractor is known to emit for
// the free-text date field.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2",
	"Jan 2",
	"2 January",
}

// BuildCalendar renders the events as an all-day VEVENT feed. Events whose
// date text cannot be parsed are skipped; the feed is best effort. Year-less
// dates are anchored to the year of now.
func BuildCalendar(events []domain.ExtractedEvent, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//posterforge//event export//EN")

	for _, event := range events {
		date, ok := parseEventDate(event.Date, now.Year())
		if !ok {
			continue
		}
		ve := cal.AddEvent(fmt.Sprintf("%s@posterforge", event.ID))
		ve.SetCreatedTime(now)
		ve.SetDtStampTime(now)
		ve.SetAllDayStartAt(date)
		ve.SetAllDayEndAt(date.AddDate(0, 0, 1))
		ve.SetSummary(event.Name)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, event.Category)
		}
	}

	return cal.Serialize()
}

// parseEventDate tries each known layout against the free-text date. Layouts
// without a year produce the supplied fallback year.
func parseEventDate(text string, fallbackYear int) (time.Time, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		if parsed.Year() == 0 {
			parsed = parsed.AddDate(fallbackYear, 0, 0)
		}
		return parsed, true
	}
	return time.Time{}, false
}
