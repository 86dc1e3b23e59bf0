package service

import (
	"strings"

	"github.com/bwmarrin/snowflake"

	ratecarddomain "github.com/pivotalhq/pivotal/internal/ratecard/domain"
)

// similarityScore measures how much of the query's wording appears in the
// candidate. It is the fraction of query tokens present in the candidate,
// with a bonus when the whole query is a substring. Zero means no overlap.
func similarityScore(query, candidate string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 2
	}

	candidateTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(c) {
		candidateTokens[tok] = struct{}{}
	}

	queryTokens := strings.Fields(q)
	matched := 0
	for _, tok := range queryTokens {
		if _, ok := candidateTokens[tok]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(queryTokens))
	if strings.Contains(c, q) || strings.Contains(q, c) {
		score += 0.5
	}
	return score
}

// bestDescriptionMatch picks the item whose description scores highest
// against the line description. Ties keep the earlier item so the result
// is deterministic for a given item ordering.
func bestDescriptionMatch(items []ratecarddomain.RateCardItem, description string) *ratecarddomain.RateCardItem {
	var (
		best      *ratecarddomain.RateCardItem
		bestScore float64
	)
	for i := range items {
		score := similarityScore(description, items[i].Description)
		if score > bestScore {
			best = &items[i]
			bestScore = score
		}
	}
	return best
}

// itemsInCategory filters a card's items down to one service category.
func itemsInCategory(items []ratecarddomain.RateCardItem, categoryID snowflake.ID) []ratecarddomain.RateCardItem {
	var out []ratecarddomain.RateCardItem
	for _, item := range items {
		if item.ServiceCategoryID != nil && *item.ServiceCategoryID == categoryID {
			out = append(out, item)
		}
	}
	return out
}
