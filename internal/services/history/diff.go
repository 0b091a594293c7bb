package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/mendel/internal/models"
)

// ComputeDiff produces a field-by-field diff of two extraction result
// maps. Facts compare by value, unit and confidence; list fields report
// added and removed items; everything else compares as display strings.
func ComputeDiff(jsonA, jsonB map[string]any) ([]models.SectionDiff, int) {
	var sections []models.SectionDiff
	total := 0

	for _, sectionName := range models.SectionNames {
		secA, _ := jsonA[sectionName].(map[string]any)
		secB, _ := jsonB[sectionName].(map[string]any)

		keySet := make(map[string]bool, len(secA)+len(secB))
		for k := range secA {
			keySet[k] = true
		}
		for k := range secB {
			keySet[k] = true
		}
		keys := make([]string, 0, len(keySet))
		for k := range keySet {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var changes []models.DiffEntry
		for _, key := range keys {
			valA := secA[key]
			valB := secB[key]

			if models.IsFactMap(valA) || models.IsFactMap(valB) {
				if entry, changed := diffFact(key, valA, valB); changed {
					changes = append(changes, entry)
				}
				continue
			}

			_, aIsList := valA.([]any)
			_, bIsList := valB.([]any)
			if aIsList || bIsList {
				changes = append(changes, diffList(key, valA, valB)...)
				continue
			}

			if entry, changed := diffPrimitive(key, valA, valB); changed {
				changes = append(changes, entry)
			}
		}

		if len(changes) > 0 {
			sections = append(sections, models.SectionDiff{
				Section: sectionName,
				Changes: changes,
			})
			total += len(changes)
		}
	}

	return sections, total
}

func diffFact(key string, valA, valB any) (models.DiffEntry, bool) {
	factA, _ := valA.(map[string]any)
	factB, _ := valB.(map[string]any)
	if !models.IsFactMap(valA) {
		factA = map[string]any{}
	}
	if !models.IsFactMap(valB) {
		factB = map[string]any{}
	}

	va, vb := factA["value"], factB["value"]
	ua, ub := factString(factA, "unit"), factString(factB, "unit")
	ca, cb := factString(factA, "confidence"), factString(factB, "confidence")

	switch {
	case va == nil && vb != nil:
		return models.DiffEntry{
			Field: key, ChangeType: models.ChangeAdded,
			NewValue: vb, NewUnit: ub, NewConfidence: cb,
		}, true
	case va != nil && vb == nil:
		return models.DiffEntry{
			Field: key, ChangeType: models.ChangeRemoved,
			OldValue: va, OldUnit: ua, OldConfidence: ca,
		}, true
	case !equalAny(va, vb) || !equalPtr(ua, ub) || !equalPtr(ca, cb):
		return models.DiffEntry{
			Field: key, ChangeType: models.ChangeChanged,
			OldValue: va, NewValue: vb,
			OldUnit: ua, NewUnit: ub,
			OldConfidence: ca, NewConfidence: cb,
		}, true
	}
	return models.DiffEntry{}, false
}

func diffList(key string, valA, valB any) []models.DiffEntry {
	setA := listToSet(valA)
	setB := listToSet(valB)

	var added, removed []string
	for s := range setB {
		if !setA[s] {
			added = append(added, s)
		}
	}
	for s := range setA {
		if !setB[s] {
			removed = append(removed, s)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	var changes []models.DiffEntry
	if len(added) > 0 {
		changes = append(changes, models.DiffEntry{
			Field: key, ChangeType: models.ChangeAdded, NewValue: added,
		})
	}
	if len(removed) > 0 {
		changes = append(changes, models.DiffEntry{
			Field: key, ChangeType: models.ChangeRemoved, OldValue: removed,
		})
	}
	return changes
}

func diffPrimitive(key string, valA, valB any) (models.DiffEntry, bool) {
	sa := displayString(valA)
	sb := displayString(valB)
	if sa == sb {
		return models.DiffEntry{}, false
	}

	entry := models.DiffEntry{Field: key}
	switch {
	case sa == "":
		entry.ChangeType = models.ChangeAdded
		entry.NewValue = sb
	case sb == "":
		entry.ChangeType = models.ChangeRemoved
		entry.OldValue = sa
	default:
		entry.ChangeType = models.ChangeChanged
		entry.OldValue = sa
		entry.NewValue = sb
	}
	return entry, true
}

func listToSet(val any) map[string]bool {
	set := make(map[string]bool)
	if list, ok := val.([]any); ok {
		for _, v := range list {
			set[displayString(v)] = true
		}
	}
	return set
}

// displayString renders any value for comparison and display.
func displayString(val any) string {
	if val == nil {
		return ""
	}
	if list, ok := val.([]any); ok {
		parts := make([]string, len(list))
		for i, v := range list {
			parts[i] = fmt.Sprintf("%v", v)
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Sprintf("%v", val)
}

func factString(fact map[string]any, key string) *string {
	if v, ok := fact[key]; ok && v != nil {
		s := fmt.Sprintf("%v", v)
		return &s
	}
	return nil
}

func equalAny(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func equalPtr(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
