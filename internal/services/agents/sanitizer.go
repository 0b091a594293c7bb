// -----------------------------------------------------------------------
// Sanitizer - Post-processing of LLM extraction output
// Fixes common shape errors before the result is validated and merged
// -----------------------------------------------------------------------

package agents

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/models"
)

// maxFixDepth bounds sanitizer recursion into nested structures.
const maxFixDepth = 5

// Sanitizer normalizes raw LLM extraction JSON. LLMs routinely wrap
// plain-string fields in fact objects, return null for list fields,
// spell out document types in full, or return lists where a single fact
// is expected. Sanitize fixes all of those so downstream merging sees a
// consistent shape.
type Sanitizer struct {
	logger arbor.ILogger
}

// NewSanitizer creates a new sanitizer.
func NewSanitizer(logger arbor.ILogger) *Sanitizer {
	return &Sanitizer{logger: logger}
}

// ParseResponse parses an LLM response into a map, stripping markdown
// code fences and repairing malformed JSON before sanitizing.
func (s *Sanitizer) ParseResponse(raw string) (map[string]any, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("LLM response is empty")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		// Truncated or malformed output happens often enough on long
		// extractions that a repair pass is worth it before giving up.
		repaired, repairErr := jsonrepair.RepairJSON(cleaned)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, fmt.Errorf("failed to parse repaired LLM response: %w", err)
		}
		s.logger.Warn().Msg("LLM response required JSON repair")
	}

	return s.Sanitize(data), nil
}

// StripCodeFences strips markdown code fences (```json ... ```) from an
// LLM response.
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-3]
	}
	return strings.TrimSpace(text)
}

// Sanitize fixes common LLM output errors in extraction JSON:
//
//  1. Plain-string fields wrapped in fact objects
//  2. List items wrapped in fact objects
//  3. cas_numbers returned as null or as a list of facts
//  4. List fields returned as null instead of []
//  5. document_type as full name instead of short code
//  6. Single-fact fields returned as a list
//
// Sanitize is idempotent: running it over already-clean data returns
// the same shape.
func (s *Sanitizer) Sanitize(data map[string]any) map[string]any {
	return fixDict(data, 0)
}

func fixDict(d map[string]any, depth int) map[string]any {
	if depth > maxFixDepth {
		return d
	}

	result := make(map[string]any, len(d))
	for key, val := range d {
		switch {
		case key == "document_type":
			if str, ok := val.(string); ok {
				if mapped, ok := models.DocTypeNameMap[strings.ToLower(strings.TrimSpace(str))]; ok {
					result[key] = mapped
					continue
				}
			}
			result[key] = val

		case models.PlainStringFields[key]:
			result[key] = fixPlainString(val)

		case models.SingleFactFields[key]:
			if list, ok := val.([]any); ok && len(list) > 0 {
				// LLM returned a list of facts, keep the first one
				if _, isMap := list[0].(map[string]any); isMap {
					result[key] = list[0]
				} else {
					result[key] = val
				}
			} else {
				result[key] = val
			}

		case models.PlainStringListFields[key]:
			result[key] = fixStringList(val)

		case key == "cas_numbers":
			result[key] = fixCASNumbers(val)

		default:
			switch v := val.(type) {
			case map[string]any:
				result[key] = fixDict(v, depth+1)
			case []any:
				fixed := make([]any, len(v))
				for i, item := range v {
					if m, ok := item.(map[string]any); ok {
						fixed[i] = fixDict(m, depth+1)
					} else {
						fixed[i] = item
					}
				}
				result[key] = fixed
			default:
				result[key] = val
			}
		}
	}

	return result
}

// unwrapValue extracts the plain value from a fact-like dict.
func unwrapValue(obj any) any {
	if m, ok := obj.(map[string]any); ok {
		if v, has := m["value"]; has {
			if v == nil {
				return nil
			}
			return stringify(v)
		}
	}
	if str, ok := obj.(string); ok {
		return str
	}
	if obj == nil {
		return nil
	}
	return stringify(obj)
}

func fixPlainString(val any) any {
	if m, ok := val.(map[string]any); ok {
		if _, has := m["value"]; has {
			return unwrapValue(m)
		}
		return val
	}
	if list, ok := val.([]any); ok {
		// A plain string field wrapped in a list of facts, join the
		// unwrapped values into one string
		var parts []string
		for _, item := range list {
			v := unwrapValue(item)
			if str, ok := v.(string); ok && str != "" {
				parts = append(parts, str)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return strings.Join(parts, "; ")
	}
	return val
}

func fixStringList(val any) any {
	if val == nil {
		return []any{}
	}
	list, ok := val.([]any)
	if !ok {
		return val
	}

	cleaned := make([]any, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		switch v := item.(type) {
		case map[string]any:
			var str string
			if inner, has := v["value"]; has {
				if inner == nil {
					continue
				}
				str = stringify(inner)
			} else if name, has := v["name"]; has {
				str = stringify(name)
			} else {
				// Generic dict, flatten to "key: value" pairs
				keys := make([]string, 0, len(v))
				for k, kv := range v {
					if kv != nil {
						keys = append(keys, k)
					}
				}
				sort.Strings(keys)
				pairs := make([]string, 0, len(keys))
				for _, k := range keys {
					pairs = append(pairs, fmt.Sprintf("%s: %v", k, v[k]))
				}
				str = strings.Join(pairs, "; ")
			}
			if str != "" {
				cleaned = append(cleaned, str)
			}
		case string:
			cleaned = append(cleaned, v)
		default:
			cleaned = append(cleaned, stringify(v))
		}
	}
	return cleaned
}

func fixCASNumbers(val any) any {
	if val == nil {
		return casPlaceholder()
	}
	list, ok := val.([]any)
	if !ok {
		return val
	}

	// SDS documents list one CAS per component, join them into a single
	// comma-separated fact
	var casValues []string
	var firstItem map[string]any
	if len(list) > 0 {
		firstItem, _ = list[0].(map[string]any)
	}
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			if inner, has := v["value"]; has && inner != nil {
				if str := stringify(inner); str != "" {
					casValues = append(casValues, str)
				}
			}
		case string:
			casValues = append(casValues, v)
		}
	}

	if len(casValues) == 0 {
		return casPlaceholder()
	}

	joined := strings.Join(casValues, ", ")
	sourceSection := "Section 3"
	confidence := models.ConfidenceHigh
	if firstItem != nil {
		if s, ok := firstItem["source_section"].(string); ok && s != "" {
			sourceSection = s
		}
		if c, ok := firstItem["confidence"].(string); ok && c != "" {
			confidence = c
		}
	}

	return map[string]any{
		"value":            joined,
		"source_section":   sourceSection,
		"raw_string":       joined,
		"confidence":       confidence,
		"is_specification": true,
		"test_method":      nil,
	}
}

func casPlaceholder() map[string]any {
	return map[string]any{
		"value":            nil,
		"source_section":   "not found",
		"raw_string":       "CAS number not found in document",
		"confidence":       models.ConfidenceLow,
		"is_specification": false,
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64, render integers without the
		// trailing ".0"
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
