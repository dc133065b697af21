package services

import (
	"sort"
	"strings"

	"listing-optimizer/models"
)

// MaxKeywords is the upper bound on keywords kept after scoring.
const MaxKeywords = 8

// ScoredKeyword is a keyword with its combined score.
type ScoredKeyword struct {
	Keyword string
	Score   float64
}

// ScoreKeywords ranks every keyword seen in stats by
// rankWeight + frequency + normalisedDemand*10 and keeps the best topN.
// rankWeight is n-i for position i of an n-long ranked list.
func ScoreKeywords(stats models.KeywordStatistics, topN int) []ScoredKeyword {
	if topN <= 0 || topN > MaxKeywords {
		topN = MaxKeywords
	}

	rankWeight := make(map[string]float64)
	var order []string
	seen := make(map[string]struct{})
	add := func(k string) {
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		order = append(order, k)
	}

	for i, k := range stats.Ranked {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := rankWeight[k]; !ok {
			rankWeight[k] = float64(len(stats.Ranked) - i)
		}
		add(k)
	}
	for _, k := range sortedKeys(stats.Frequency) {
		if k = strings.TrimSpace(k); k != "" {
			add(k)
		}
	}
	for _, k := range sortedKeys(stats.Demand) {
		if k = strings.TrimSpace(k); k != "" {
			add(k)
		}
	}

	var maxDemand float64
	for _, d := range stats.Demand {
		if d > maxDemand {
			maxDemand = d
		}
	}

	scored := make([]ScoredKeyword, 0, len(order))
	for _, k := range order {
		score := rankWeight[k] + float64(stats.Frequency[k])
		if maxDemand > 0 {
			score += stats.Demand[k] / maxDemand * 10
		}
		scored = append(scored, ScoredKeyword{Keyword: k, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Keyword < scored[j].Keyword
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
