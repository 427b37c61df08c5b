package vision

import (
	"encoding/json"
	"strings"

	"posterforge/internal/domain"
)

type eventsPayload struct {
	Events []eventPayload `json:"events"`
}

type eventPayload struct {
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Day         string   `json:"day"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Importance  string   `json:"importance"`
	Colors      []string `json:"colors"`
	Keywords    []string `json:"keywords"`
}

// parseEvents locates the first balanced JSON object in the model's free-form
// reply, decodes it, and validates the untrusted schema. Entries without a
// name or with an out-of-set type or importance are dropped; an empty result
// is an extraction failure.
func parseEvents(raw string) ([]domain.ExtractedEvent, error) {
	fragment := firstJSONObject(trimCodeFence(raw))
	if fragment == "" {
		return nil, extractionErr("no valid JSON found in response", nil)
	}
	var payload eventsPayload
	if err := json.Unmarshal([]byte(fragment), &payload); err != nil {
		return nil, extractionErr("parse events payload", err)
	}
	if payload.Events == nil {
		return nil, extractionErr("response is missing the events array", nil)
	}
	events := make([]domain.ExtractedEvent, 0, len(payload.Events))
	for _, e := range payload.Events {
		ev, ok := normalizeEvent(e)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil, extractionErr("no valid events in response", nil)
	}
	return events, nil
}

// normalizeEvent validates one untrusted entry against the closed field sets.
func normalizeEvent(e eventPayload) (domain.ExtractedEvent, bool) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return domain.ExtractedEvent{}, false
	}
	typ := strings.ToLower(strings.TrimSpace(e.Type))
	if !domain.ValidEventType(typ) {
		return domain.ExtractedEvent{}, false
	}
	importance := strings.ToLower(strings.TrimSpace(e.Importance))
	if importance == "" {
		importance = string(domain.ImportanceMedium)
	}
	if !domain.ValidImportance(importance) {
		return domain.ExtractedEvent{}, false
	}
	return domain.ExtractedEvent{
		Name:        name,
		Date:        strings.TrimSpace(e.Date),
		Day:         strings.TrimSpace(e.Day),
		Type:        domain.EventType(typ),
		Description: strings.TrimSpace(e.Description),
		Category:    strings.TrimSpace(e.Category),
		Importance:  domain.Importance(importance),
		Colors:      trimAll(e.Colors),
		Keywords:    trimAll(e.Keywords),
	}, true
}

// firstJSONObject returns the first balanced {...} span in text, tracking
// string literals and escapes so braces inside values do not confuse the scan.
func firstJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func trimAll(values []string) []string {
	var result []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		result = append(result, v)
	}
	return result
}
