// internal/services/ai_service_test.go
package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftai/craftai-backend/internal/config"
)

func newDemoAI(t *testing.T) *AIService {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	svc, err := NewAIService(context.Background(), &config.Config{}, log)
	require.NoError(t, err)
	require.True(t, svc.DemoMode())
	svc.pick = func(n int) int { return 0 }
	return svc
}

func TestSuggestPrice(t *testing.T) {
	svc := newDemoAI(t)

	// Ceramic analysis: 1 + 0.3 (ceramic) + 0.3 (clay) + 0.3 (hand) +
	// 3*0.1 (techniques), scaled by confidence 92.
	analysis := &MaterialAnalysis{
		Materials:  []string{"Ceramic", "Natural Clay", "Mineral Glaze"},
		CraftType:  "Hand-thrown Ceramic Vessel",
		Techniques: []string{"Wheel throwing", "Natural glazing", "Kiln firing"},
		Confidence: 92,
	}

	suggestion := svc.SuggestPrice(analysis)

	// 35 * 2.2 * (0.8 + 0.92*0.4) = 35 * 2.2 * 1.168 = 89.936
	assert.Equal(t, 90, suggestion.Suggested)
	assert.Equal(t, 72, suggestion.Min)
	assert.Equal(t, 117, suggestion.Max)
	assert.Equal(t, "High", suggestion.Confidence)
	assert.Contains(t, suggestion.Reasoning, "Ceramic")
}

func TestSuggestPriceDeterministic(t *testing.T) {
	svc := newDemoAI(t)
	analysis := &MaterialAnalysis{
		Materials:  []string{"Sterling Silver", "Turquoise"},
		CraftType:  "Handcrafted Silver Jewelry",
		Techniques: []string{"Hand forging", "Stone setting"},
		Confidence: 94,
	}

	first := svc.SuggestPrice(analysis)
	second := svc.SuggestPrice(analysis)
	assert.Equal(t, first, second)
	assert.Greater(t, first.Max, first.Suggested)
	assert.Less(t, first.Min, first.Suggested)
}

func TestSuggestPriceConfidenceBuckets(t *testing.T) {
	svc := newDemoAI(t)

	assert.Equal(t, "High", svc.SuggestPrice(&MaterialAnalysis{Confidence: 91}).Confidence)
	assert.Equal(t, "Medium", svc.SuggestPrice(&MaterialAnalysis{Confidence: 90}).Confidence)
	assert.Equal(t, "Medium", svc.SuggestPrice(&MaterialAnalysis{Confidence: 81}).Confidence)
	assert.Equal(t, "Low", svc.SuggestPrice(&MaterialAnalysis{Confidence: 80}).Confidence)
}

func TestAnalyzeMaterialsDemoMode(t *testing.T) {
	svc := newDemoAI(t)

	analysis, usingAI := svc.AnalyzeMaterials(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")

	assert.False(t, usingAI)
	assert.NotEmpty(t, analysis.Materials)
	assert.NotEmpty(t, analysis.Tags)
	assert.NotZero(t, analysis.Confidence)
	assert.Equal(t, "Handcrafted Ceramic Vase", analysis.Title)
	assert.Contains(t, analysis.Details.DetectionMethod, "Demo Mode")
}

func TestGenerateStoryDemoMode(t *testing.T) {
	svc := newDemoAI(t)

	story, err := svc.GenerateStory(context.Background(), "a vase shaped by my grandmother's hands", "Heartfelt")
	require.NoError(t, err)
	assert.Contains(t, story, "a vase shaped by my grandmother's hands")
	assert.Contains(t, story, "heartfelt")
}

func TestGenerateStoryRequiresIdea(t *testing.T) {
	svc := newDemoAI(t)

	_, err := svc.GenerateStory(context.Background(), "   ", "warm")
	require.Error(t, err)
}

func TestEnhanceDescription(t *testing.T) {
	svc := newDemoAI(t)
	analysis := &demoAnalyses[0]

	enhanced := svc.EnhanceDescription("Ceramic Vase", "Ceramics & Pottery", "A lovely vase.", analysis)
	assert.True(t, strings.HasPrefix(enhanced, "A lovely vase."))
	assert.Contains(t, enhanced, "ceramic vase")
	assert.Contains(t, enhanced, "Terracotta Red")

	fresh := svc.EnhanceDescription("Ceramic Vase", "Ceramics & Pottery", "  ", analysis)
	assert.False(t, strings.HasPrefix(fresh, "  "))
	assert.Contains(t, fresh, "Wheel throwing")
}

func TestExtractJSON(t *testing.T) {
	raw, ok := extractJSON("```json\n{\"confidence\": 95}\n```")
	require.True(t, ok)
	assert.Equal(t, `{"confidence": 95}`, raw)

	_, ok = extractJSON("no json here")
	assert.False(t, ok)
}

func TestApplyAnalysisDefaults(t *testing.T) {
	analysis := &MaterialAnalysis{}
	applyAnalysisDefaults(analysis)

	assert.Equal(t, []string{"Handcrafted Material"}, analysis.Materials)
	assert.Equal(t, 85, analysis.Confidence)
	assert.Equal(t, "Handmade Craft", analysis.CraftType)
	assert.Equal(t, "Handcrafted Artisan Piece", analysis.Title)

	// Populated fields survive.
	partial := &MaterialAnalysis{Confidence: 60, Style: "Brutalist"}
	applyAnalysisDefaults(partial)
	assert.Equal(t, 60, partial.Confidence)
	assert.Equal(t, "Brutalist", partial.Style)
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "jpeg", imageFormat("image/jpeg"))
	assert.Equal(t, "png", imageFormat("image/png"))
}
