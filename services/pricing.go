package services

import (
	"math"

	"listing-optimizer/models"
)

// Confidence reported when no comparable items were found.
const fallbackConfidence = 0.1

// DerivePriceStatistics summarises comparable items against the listing's own
// price. With no usable items it falls back to a ±20% band around
// originalPrice at minimal confidence.
func DerivePriceStatistics(items []models.ComparisonItem, originalPrice float64, targetCount int) models.PriceStatistics {
	var prices, soldPrices []float64
	for _, it := range items {
		if it.Price <= 0 {
			continue
		}
		prices = append(prices, it.Price)
		if it.SoldAt != nil {
			soldPrices = append(soldPrices, it.Price)
		}
	}

	if len(prices) == 0 {
		return models.PriceStatistics{
			Average:     originalPrice,
			Range:       models.PriceRange{Min: 0.8 * originalPrice, Max: 1.2 * originalPrice},
			Recommended: originalPrice,
			Confidence:  fallbackConfidence,
		}
	}

	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	stats := models.PriceStatistics{
		Average: round2(mean(prices)),
		Range:   models.PriceRange{Min: round2(min), Max: round2(max)},
	}
	stats.Recommended = stats.Average
	if len(soldPrices) > 0 {
		stats.Recommended = round2(mean(soldPrices))
	}

	if targetCount < 1 {
		targetCount = 1
	}
	n := float64(len(prices))
	stats.Confidence = clamp01(0.5*n/float64(targetCount) + 0.5*float64(len(soldPrices))/n)
	return stats
}

// RecommendPrice moves the listing price toward the market recommendation.
// Low-confidence recommendations only move halfway, and the result always
// stays within [0.5, 1.5] times the market average.
func RecommendPrice(original float64, stats models.PriceStatistics) float64 {
	price := stats.Recommended
	if stats.Confidence < 0.7 {
		price = original + (price-original)*0.5
	}

	lo, hi := 0.5*stats.Average, 1.5*stats.Average
	price = math.Max(lo, math.Min(hi, price))

	rounded := round2(price)
	if rounded > hi {
		rounded = math.Floor(hi*100) / 100
	}
	if rounded < lo {
		rounded = math.Ceil(lo*100) / 100
	}
	return rounded
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
