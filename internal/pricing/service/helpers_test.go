package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ratecarddomain "github.com/pivotalhq/pivotal/internal/ratecard/domain"
)

func TestSimilarityScore(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      float64
	}{
		{"exact match", "Development work", "development work", 2},
		{"no overlap", "design review", "hosting fee", 0},
		{"empty query", "", "anything", 0},
		{"empty candidate", "anything", "", 0},
		{"partial tokens", "development work on portal", "development work", 1.0/2 + 0.5},
		{"substring bonus", "development", "development work", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarityScore(tt.query, tt.candidate), 1e-9)
		})
	}
}

func TestBestDescriptionMatchPrefersHigherScore(t *testing.T) {
	items := []ratecarddomain.RateCardItem{
		{Description: "Hosting fee", BaseRate: decimal.NewFromInt(30)},
		{Description: "Development work", BaseRate: decimal.NewFromInt(150)},
		{Description: "Design consultation", BaseRate: decimal.NewFromInt(120)},
	}

	best := bestDescriptionMatch(items, "development work")
	require.NotNil(t, best)
	assert.Equal(t, "Development work", best.Description)
}

func TestBestDescriptionMatchNilWhenNothingScores(t *testing.T) {
	items := []ratecarddomain.RateCardItem{
		{Description: "Hosting fee"},
		{Description: "Design consultation"},
	}
	assert.Nil(t, bestDescriptionMatch(items, "quantum flux calibration"))
}

func TestBestDescriptionMatchTieKeepsEarlier(t *testing.T) {
	items := []ratecarddomain.RateCardItem{
		{Description: "Support plan silver"},
		{Description: "Support plan gold"},
	}
	best := bestDescriptionMatch(items, "support plan")
	require.NotNil(t, best)
	assert.Equal(t, "Support plan silver", best.Description)
}
