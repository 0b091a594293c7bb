package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestSanitizer() *Sanitizer {
	return NewSanitizer(arbor.NewLogger())
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, StripCodeFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, StripCodeFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, StripCodeFences(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, StripCodeFences("  {\"a\": 1}  "))
}

func TestParseResponseRepairsMalformedJSON(t *testing.T) {
	s := newTestSanitizer()

	// Trailing comma is invalid JSON but repairable
	data, err := s.ParseResponse(`{"identity": {"product_name": "E43",}}`)
	require.NoError(t, err)

	identity, ok := data["identity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "E43", identity["product_name"])
}

func TestParseResponseEmptyInput(t *testing.T) {
	s := newTestSanitizer()
	_, err := s.ParseResponse("```\n```")
	assert.Error(t, err)
}

func TestSanitizeUnwrapsPlainStringFields(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"identity": map[string]any{
			"product_name": map[string]any{"value": "ELASTOSIL E43", "source_section": "header"},
		},
	})

	identity := data["identity"].(map[string]any)
	assert.Equal(t, "ELASTOSIL E43", identity["product_name"])
}

func TestSanitizeJoinsWrappedPlainStringList(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"application": map[string]any{
			"main_application": []any{
				map[string]any{"value": "Bonding"},
				map[string]any{"value": "Sealing"},
			},
		},
	})

	application := data["application"].(map[string]any)
	assert.Equal(t, "Bonding; Sealing", application["main_application"])
}

func TestSanitizeSingleFactListTakesFirst(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"physical": map[string]any{
			"density": []any{
				map[string]any{"value": "1.10", "source_section": "Typical Properties"},
				map[string]any{"value": "1.12", "source_section": "Other"},
			},
		},
	})

	physical := data["physical"].(map[string]any)
	density, ok := physical["density"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1.10", density["value"])
}

func TestSanitizeNullListBecomesEmpty(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"safety": map[string]any{
			"ghs_statements": nil,
		},
	})

	safety := data["safety"].(map[string]any)
	assert.Equal(t, []any{}, safety["ghs_statements"])
}

func TestSanitizeListItemShapes(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"chemical": map[string]any{
			"chemical_components": []any{
				nil,
				map[string]any{"value": "Polydimethylsiloxane"},
				map[string]any{"name": "Silica"},
				"Acetoxysilane",
				42.0,
			},
		},
	})

	chemical := data["chemical"].(map[string]any)
	components := chemical["chemical_components"].([]any)
	assert.Equal(t, []any{"Polydimethylsiloxane", "Silica", "Acetoxysilane", "42"}, components)
}

func TestSanitizeDocumentTypeFullName(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"document_info": map[string]any{
			"document_type": "Safety Data Sheet",
		},
	})

	info := data["document_info"].(map[string]any)
	assert.Equal(t, "SDS", info["document_type"])
}

func TestSanitizeDocumentTypeShortCodeUnchanged(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"document_info": map[string]any{"document_type": "TDS"},
	})

	info := data["document_info"].(map[string]any)
	assert.Equal(t, "TDS", info["document_type"])
}

func TestSanitizeCASNull(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"chemical": map[string]any{"cas_numbers": nil},
	})

	chemical := data["chemical"].(map[string]any)
	cas := chemical["cas_numbers"].(map[string]any)
	assert.Nil(t, cas["value"])
	assert.Equal(t, "not found", cas["source_section"])
	assert.Equal(t, "low", cas["confidence"])
	assert.Equal(t, false, cas["is_specification"])
}

func TestSanitizeCASListJoined(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"chemical": map[string]any{
			"cas_numbers": []any{
				map[string]any{"value": "63148-62-9", "source_section": "Section 3.2", "confidence": "high"},
				map[string]any{"value": "7631-86-9"},
			},
		},
	})

	chemical := data["chemical"].(map[string]any)
	cas := chemical["cas_numbers"].(map[string]any)
	assert.Equal(t, "63148-62-9, 7631-86-9", cas["value"])
	assert.Equal(t, "63148-62-9, 7631-86-9", cas["raw_string"])
	assert.Equal(t, "Section 3.2", cas["source_section"])
	assert.Equal(t, true, cas["is_specification"])
}

func TestSanitizeCASEmptyListBecomesPlaceholder(t *testing.T) {
	s := newTestSanitizer()

	data := s.Sanitize(map[string]any{
		"chemical": map[string]any{"cas_numbers": []any{}},
	})

	chemical := data["chemical"].(map[string]any)
	cas := chemical["cas_numbers"].(map[string]any)
	assert.Nil(t, cas["value"])
}

func TestSanitizeIsIdempotent(t *testing.T) {
	s := newTestSanitizer()

	input := map[string]any{
		"identity": map[string]any{
			"product_name": map[string]any{"value": "E43"},
		},
		"chemical": map[string]any{
			"cas_numbers":         nil,
			"chemical_components": []any{map[string]any{"value": "PDMS"}},
		},
	}

	once := s.Sanitize(input)
	twice := s.Sanitize(once)
	assert.Equal(t, once, twice)
}
