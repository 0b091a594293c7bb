// -----------------------------------------------------------------------
// Merger Agent - Combine partial extractions into a Golden Record
// Purely programmatic, no LLM calls
// -----------------------------------------------------------------------

package agents

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// Merger combines multiple partial extractions (TDS + SDS + RPI + CoA +
// Brochure) for the same product into a single Golden Record using the
// Truth Hierarchy:
//
//	TDS(5) > CoA(4) > SDS(3) > RPI(2) > Brochure(1) > unknown(0)
//
// Scalar fields take the highest-priority value, union fields combine
// from all sources, and conflicts are logged as warnings while keeping
// the higher-priority value.
type Merger struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.MergerService = (*Merger)(nil)

// NewMerger creates a merger agent.
func NewMerger(logger arbor.ILogger) *Merger {
	return &Merger{logger: logger}
}

// Merge combines a product group into a single Golden Record.
func (m *Merger) Merge(group *models.ProductGroup) (map[string]any, error) {
	partials := group.PartialExtractions

	if len(partials) == 0 {
		m.logger.Warn().Str("product", group.ProductName).Msg("Merger: no partials to merge")
		return nil, fmt.Errorf("No partial extractions for %s", group.ProductName)
	}

	if len(partials) == 1 {
		// Single document, just return its extraction result
		m.logger.Info().
			Str("product", group.ProductName).
			Str("doc_type", partials[0].DocType).
			Msg("Merger: single partial, no merge needed")
		return partials[0].ExtractionResult, nil
	}

	// Sort by priority, highest first. Stable sort keeps input order for
	// equal priorities.
	sorted := make([]models.PartialExtraction, len(partials))
	copy(sorted, partials)
	sort.SliceStable(sorted, func(i, j int) bool {
		return models.DocTypePriority[sorted[i].DocType] > models.DocTypePriority[sorted[j].DocType]
	})

	// Start with the highest-priority extraction as the base
	merged := deepCopyMap(sorted[0].ExtractionResult)
	var mergeWarnings []string

	// Merge in lower-priority partials
	for _, partial := range sorted[1:] {
		if len(partial.ExtractionResult) == 0 {
			continue
		}
		for _, section := range models.SectionNames {
			mergeWarnings = mergeSection(merged, partial.ExtractionResult, section, partial.DocType, mergeWarnings)
		}
	}

	// Rebuild missing_attributes: only those missing from ALL sources
	missing := computeMissing(sorted)
	merged["missing_attributes"] = toAnySlice(missing)

	// Combine extraction_warnings from all sources plus merge conflicts
	warningSet := make(map[string]bool)
	for _, p := range sorted {
		for _, w := range p.Warnings {
			warningSet[w] = true
		}
	}
	for _, w := range mergeWarnings {
		warningSet[w] = true
	}
	warnings := make([]string, 0, len(warningSet))
	for w := range warningSet {
		warnings = append(warnings, w)
	}
	sort.Strings(warnings)
	merged["extraction_warnings"] = toAnySlice(warnings)

	m.logger.Info().
		Str("product", group.ProductName).
		Int("sources", len(sorted)).
		Int("missing", len(missing)).
		Int("warnings", len(warnings)).
		Msg("Merger: Golden Record created")

	return merged, nil
}

// mergeSection merges one section from source into target. The Truth
// Hierarchy means only null or empty target fields are filled from the
// lower-priority source; union fields are always combined.
func mergeSection(target, source map[string]any, section, sourceType string, warnings []string) []string {
	targetSection, tok := target[section].(map[string]any)
	sourceSection, sok := source[section].(map[string]any)
	if !sok {
		return warnings
	}
	if !tok {
		if _, exists := target[section]; exists && target[section] != nil {
			return warnings
		}
		targetSection = map[string]any{}
	}

	for key, sourceVal := range sourceSection {
		if sourceVal == nil {
			continue
		}

		targetVal := targetSection[key]

		// Union-merge fields: combine lists from all sources
		if models.UnionMergeFields[key] {
			sourceList, sIsList := sourceVal.([]any)
			targetList, tIsList := targetVal.([]any)
			if sIsList && tIsList {
				existing := make(map[string]bool, len(targetList))
				for _, v := range targetList {
					existing[fmt.Sprintf("%v", v)] = true
				}
				for _, item := range sourceList {
					str := fmt.Sprintf("%v", item)
					if !existing[str] {
						targetList = append(targetList, item)
						existing[str] = true
					}
				}
				targetSection[key] = targetList
			} else if sIsList && (targetVal == nil || emptyList(targetVal)) {
				targetSection[key] = sourceVal
			}
			continue
		}

		// Plain string fields: fill if target is empty
		if models.PlainStringFields[key] {
			if emptyScalar(targetVal) {
				targetSection[key] = sourceVal
			}
			continue
		}

		// Plain string list fields: fill if target is empty
		if models.PlainStringListFields[key] {
			if targetVal == nil || emptyList(targetVal) {
				targetSection[key] = sourceVal
			}
			continue
		}

		// Single fact fields: fill if target is null, warn on conflict
		if models.SingleFactFields[key] || key == "cas_numbers" {
			if targetVal == nil {
				targetSection[key] = sourceVal
			} else if tm, tok := targetVal.(map[string]any); tok {
				if sm, sok := sourceVal.(map[string]any); sok {
					tValue := tm["value"]
					sValue := sm["value"]
					if !emptyScalar(tValue) && !emptyScalar(sValue) &&
						fmt.Sprintf("%v", tValue) != fmt.Sprintf("%v", sValue) {
						warnings = append(warnings, fmt.Sprintf(
							"Conflict in %s.%s: keeping '%v' (higher priority), discarding '%v' from %s",
							section, key, tValue, sValue, sourceType,
						))
					}
				}
			}
			continue
		}

		// Generic: fill null with any non-null value
		if targetVal == nil {
			targetSection[key] = sourceVal
		}
	}

	target[section] = targetSection
	return warnings
}

// computeMissing returns the attributes missing from ALL partials,
// sorted. An attribute is only missing in the Golden Record when no
// single source document provided it.
func computeMissing(partials []models.PartialExtraction) []string {
	if len(partials) == 0 {
		return []string{}
	}

	missing := make(map[string]bool, len(partials[0].MissingFields))
	for _, f := range partials[0].MissingFields {
		missing[f] = true
	}
	for _, partial := range partials[1:] {
		inPartial := make(map[string]bool, len(partial.MissingFields))
		for _, f := range partial.MissingFields {
			inPartial[f] = true
		}
		for f := range missing {
			if !inPartial[f] {
				delete(missing, f)
			}
		}
	}

	result := make([]string, 0, len(missing))
	for f := range missing {
		result = append(result, f)
	}
	sort.Strings(result)
	return result
}

func emptyScalar(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

func emptyList(v any) bool {
	list, ok := v.([]any)
	return ok && len(list) == 0
}

func toAnySlice(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

// deepCopyMap copies nested maps and slices so merging never mutates
// the base partial's extraction result.
func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
