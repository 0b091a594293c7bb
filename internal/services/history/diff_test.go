package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/mendel/internal/models"
)

func fact(value any, unit, confidence string) map[string]any {
	f := map[string]any{
		"value":          value,
		"source_section": "Typical Properties",
	}
	if unit != "" {
		f["unit"] = unit
	}
	if confidence != "" {
		f["confidence"] = confidence
	}
	return f
}

func TestComputeDiffNoChanges(t *testing.T) {
	a := map[string]any{
		"physical": map[string]any{"density": fact("1.10", "g/cm3", "high")},
	}
	b := map[string]any{
		"physical": map[string]any{"density": fact("1.10", "g/cm3", "high")},
	}

	sections, total := ComputeDiff(a, b)
	assert.Empty(t, sections)
	assert.Zero(t, total)
}

func TestComputeDiffFactChanged(t *testing.T) {
	a := map[string]any{
		"physical": map[string]any{"density": fact("1.10", "g/cm3", "high")},
	}
	b := map[string]any{
		"physical": map[string]any{"density": fact("1.12", "g/cm3", "medium")},
	}

	sections, total := ComputeDiff(a, b)
	require.Len(t, sections, 1)
	assert.Equal(t, "physical", sections[0].Section)
	require.Len(t, sections[0].Changes, 1)

	change := sections[0].Changes[0]
	assert.Equal(t, "density", change.Field)
	assert.Equal(t, models.ChangeChanged, change.ChangeType)
	assert.Equal(t, "1.10", change.OldValue)
	assert.Equal(t, "1.12", change.NewValue)
	assert.Equal(t, "high", *change.OldConfidence)
	assert.Equal(t, "medium", *change.NewConfidence)
	assert.Equal(t, 1, total)
}

func TestComputeDiffFactAddedAndRemoved(t *testing.T) {
	a := map[string]any{
		"safety": map[string]any{
			"un_number":   fact("UN 1993", "", "high"),
			"flash_point": fact(nil, "", ""),
		},
	}
	b := map[string]any{
		"safety": map[string]any{
			"un_number":   fact(nil, "", ""),
			"flash_point": fact(">100", "C", "medium"),
		},
	}

	sections, total := ComputeDiff(a, b)
	require.Len(t, sections, 1)
	assert.Equal(t, 2, total)

	byField := map[string]models.DiffEntry{}
	for _, c := range sections[0].Changes {
		byField[c.Field] = c
	}

	assert.Equal(t, models.ChangeRemoved, byField["un_number"].ChangeType)
	assert.Equal(t, "UN 1993", byField["un_number"].OldValue)

	assert.Equal(t, models.ChangeAdded, byField["flash_point"].ChangeType)
	assert.Equal(t, ">100", byField["flash_point"].NewValue)
	assert.Equal(t, "C", *byField["flash_point"].NewUnit)
}

func TestComputeDiffLists(t *testing.T) {
	a := map[string]any{
		"safety": map[string]any{
			"certifications": []any{"ISO 9001", "ISO 14001"},
		},
	}
	b := map[string]any{
		"safety": map[string]any{
			"certifications": []any{"ISO 9001", "REACH"},
		},
	}

	sections, total := ComputeDiff(a, b)
	require.Len(t, sections, 1)
	assert.Equal(t, 2, total)

	changes := sections[0].Changes
	require.Len(t, changes, 2)
	assert.Equal(t, models.ChangeAdded, changes[0].ChangeType)
	assert.Equal(t, []string{"REACH"}, changes[0].NewValue)
	assert.Equal(t, models.ChangeRemoved, changes[1].ChangeType)
	assert.Equal(t, []string{"ISO 14001"}, changes[1].OldValue)
}

func TestComputeDiffPrimitives(t *testing.T) {
	a := map[string]any{
		"document_info": map[string]any{
			"language":      "en",
			"revision_date": "2024-01-01",
		},
	}
	b := map[string]any{
		"document_info": map[string]any{
			"language":      "de",
			"revision_date": "2024-01-01",
			"manufacturer":  "Wacker Chemie AG",
		},
	}

	sections, total := ComputeDiff(a, b)
	require.Len(t, sections, 1)
	assert.Equal(t, 2, total)

	byField := map[string]models.DiffEntry{}
	for _, c := range sections[0].Changes {
		byField[c.Field] = c
	}

	assert.Equal(t, models.ChangeChanged, byField["language"].ChangeType)
	assert.Equal(t, "en", byField["language"].OldValue)
	assert.Equal(t, "de", byField["language"].NewValue)
	assert.Equal(t, models.ChangeAdded, byField["manufacturer"].ChangeType)
}

func TestComputeDiffMissingSectionTolerated(t *testing.T) {
	a := map[string]any{}
	b := map[string]any{
		"identity": map[string]any{"product_name": "E43"},
	}

	sections, total := ComputeDiff(a, b)
	require.Len(t, sections, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.ChangeAdded, sections[0].Changes[0].ChangeType)
}
