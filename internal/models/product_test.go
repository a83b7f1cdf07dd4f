// internal/models/product_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "dedupes case-insensitively keeping order",
			input:    []string{"Ceramic", "handmade", "ceramic", "Pottery"},
			expected: []string{"ceramic", "handmade", "pottery"},
		},
		{
			name:     "drops empty and whitespace-only tags",
			input:    []string{"", "  ", "wood", " carved "},
			expected: []string{"wood", "carved"},
		},
		{
			name:     "caps at MaxTags",
			input:    []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
			expected: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTags(tt.input))
		})
	}
}

func TestNormalizeTagsInvariant(t *testing.T) {
	// Arbitrary add/remove sequences must never leave duplicates or empties.
	result := NormalizeTags([]string{"Silver ", "silver", "", "turquoise", "TURQUOISE", "jewelry"})

	seen := map[string]bool{}
	for _, tag := range result {
		assert.NotEmpty(t, tag)
		assert.False(t, seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
	assert.LessOrEqual(t, len(result), MaxTags)
}

func TestProductMatchesSearch(t *testing.T) {
	product := &Product{
		Title:       "Handcrafted Ceramic Vase",
		Description: "Wheel-thrown with natural glazes",
		Category:    "Ceramics & Pottery",
		Tags:        []string{"pottery", "home-decor"},
		Materials:   []string{"Natural Clay", "Mineral Glaze"},
	}

	assert.True(t, product.MatchesSearch("ceramic"))
	assert.True(t, product.MatchesSearch("GLAZES"))
	assert.True(t, product.MatchesSearch("home-decor"))
	assert.True(t, product.MatchesSearch("clay"))
	assert.True(t, product.MatchesSearch("pottery"))
	assert.False(t, product.MatchesSearch("textile"))
}
