package summarize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// SanitizeSummaryJSON
// - Renames known synonyms (advice/suggestions -> recommendations)
// - Coerces a lone recommendation string into a one-element array
// - Drops null/empty members and unknown keys (strict additionalProperties friendliness)
func SanitizeSummaryJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms the model likes to invent
	renamed("advice", "recommendations")
	renamed("suggestions", "recommendations")
	renamed("recommendation", "recommendations")

	// 2) recommendations: accept a string, a list, or nothing
	switch t := m["recommendations"].(type) {
	case nil:
		delete(m, "recommendations")
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			delete(m, "recommendations")
			dropped = append(dropped, "recommendations(empty)")
		} else {
			m["recommendations"] = []any{s}
		}
	case []any:
		clean := make([]any, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					clean = append(clean, s)
				}
			}
		}
		if len(clean) == 0 {
			delete(m, "recommendations")
			dropped = append(dropped, "recommendations(empty)")
		} else {
			m["recommendations"] = clean
		}
	default:
		delete(m, "recommendations")
		dropped = append(dropped, "recommendations(type)")
	}

	// 3) confidence: tolerate a stringified number; drop anything else odd
	switch t := m["confidence"].(type) {
	case nil:
	case float64:
		if t < 0 || t > 1 {
			delete(m, "confidence")
			dropped = append(dropped, "confidence(range)")
		}
	case string:
		if v, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && v >= 0 && v <= 1 {
			m["confidence"] = v
		} else {
			delete(m, "confidence")
			dropped = append(dropped, "confidence(string)")
		}
	default:
		delete(m, "confidence")
		dropped = append(dropped, "confidence(type)")
	}

	// 4) trim the summary; an empty one fails validation downstream
	if v, ok := m["summary"].(string); ok {
		s := strings.TrimSpace(v)
		if s == "" {
			delete(m, "summary")
			dropped = append(dropped, "summary(empty)")
		} else {
			m["summary"] = s
		}
	}

	// 5) remove unknown keys
	allowed := map[string]struct{}{
		"summary": {}, "recommendations": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.summarize.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
