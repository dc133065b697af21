package services

import (
	"fmt"
	"strings"

	"listing-optimizer/models"
)

// MaxSellingPoints caps the selling point list.
const MaxSellingPoints = 6

var genericSellingPoints = []string{
	"Fast shipping with tracking on every order",
	"Packed securely to arrive safely",
	"Trusted seller with responsive support",
	"Hassle-free returns",
}

// SellingPoints lists the strongest reasons to buy, most specific first.
func SellingPoints(attrs *models.ListingAttributes, stats models.PriceStatistics, max int) []string {
	if max <= 0 {
		max = MaxSellingPoints
	}
	var points []string

	if stats.Average > 0 && attrs.Price < 0.9*stats.Average {
		points = append(points, fmt.Sprintf("Priced below market value (market average $%.2f)", stats.Average))
	}

	if p := conditionPoint(attrs.Condition); p != "" {
		points = append(points, p)
	}

	for _, k := range sortedKeys(attrs.Specifications) {
		if strings.Contains(strings.ToLower(k), "warranty") {
			points = append(points, fmt.Sprintf("%s: %s", k, attrs.Specifications[k]))
		}
	}

	points = append(points, genericSellingPoints...)
	if len(points) > max {
		points = points[:max]
	}
	return points
}

func conditionPoint(condition string) string {
	c := strings.ToLower(condition)
	switch {
	case c == "":
		return ""
	case strings.Contains(c, "like new"), strings.Contains(c, "open box"):
		return "Like-new condition with minimal signs of use"
	case strings.Contains(c, "refurbished"):
		return "Professionally refurbished and tested"
	case strings.Contains(c, "new"):
		return "Brand new and unused"
	case strings.Contains(c, "used"), strings.Contains(c, "pre-owned"):
		return "Pre-owned, fully tested and working"
	case strings.Contains(c, "parts"):
		return "Sold as-is, ideal for parts or repair"
	default:
		return ""
	}
}
