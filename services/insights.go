package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"listing-optimizer/errs"
	"listing-optimizer/models"
	"listing-optimizer/utils"
)

const topKeywordCount = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate aggregates successful results and failures from one batch.
func (s *InsightService) Generate(results []*models.PipelineResult, failures []error) *models.InsightReport {
	report := &models.InsightReport{
		FailuresByKind:   make(map[string]int),
		FailuresByStage:  make(map[string]int),
		AverageStageTime: make(map[string]time.Duration),
	}

	report.Succeeded = len(results)
	report.Failed = len(failures)
	report.TotalRuns = report.Succeeded + report.Failed

	for _, err := range failures {
		report.FailuresByKind[string(errs.KindOf(err))]++
		stage := "unknown"
		if e, ok := errs.As(err); ok && e.Stage != "" {
			stage = e.Stage
		}
		report.FailuresByStage[stage]++
	}

	if len(results) == 0 {
		return report
	}

	var totalOrig, totalRec, totalChange float64
	var largest float64
	stageTotals := make(map[string]time.Duration)
	stageCounts := make(map[string]int)
	keywordCounts := make(map[string]int)

	for _, r := range results {
		if r.Attributes == nil || r.Optimized == nil {
			continue
		}
		orig := r.Attributes.Price
		rec := r.Optimized.Price
		totalOrig += orig
		totalRec += rec
		if orig > 0 {
			change := (rec - orig) / orig * 100
			totalChange += change
			if report.LargestChange == nil || math.Abs(change) > largest {
				largest = math.Abs(change)
				report.LargestChange = r
			}
		}
		for _, t := range r.Timings {
			stageTotals[t.Stage] += t.Elapsed
			stageCounts[t.Stage]++
		}
		for _, k := range r.Optimized.Keywords {
			keywordCounts[k]++
		}
	}

	n := float64(len(results))
	report.AverageOriginalPrice = round2(totalOrig / n)
	report.AverageRecommendedPrice = round2(totalRec / n)
	report.AveragePriceChangePct = round2(totalChange / n)

	for stage, total := range stageTotals {
		report.AverageStageTime[stage] = total / time.Duration(stageCounts[stage])
	}

	keywords := sortedKeys(keywordCounts)
	sort.SliceStable(keywords, func(i, j int) bool {
		return keywordCounts[keywords[i]] > keywordCounts[keywords[j]]
	})
	if len(keywords) > topKeywordCount {
		keywords = keywords[:topKeywordCount]
	}
	report.TopKeywords = keywords

	return report
}

// Print writes the batch report with the same coloured layout as PrintResult.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 LISTING OPTIMIZATION SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings processed : \033[1m%s\033[0m\n", humanize.Comma(int64(r.TotalRuns)))
	fmt.Fprintf(w, "  Optimized          : \033[1;32m%d\033[0m\n", r.Succeeded)
	fmt.Fprintf(w, "  Failed             : \033[1;31m%d\033[0m\n", r.Failed)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Pricing\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.Succeeded > 0 {
		fmt.Fprintf(w, "  Average original    : \033[1;32m%s\033[0m\n", money(r.AverageOriginalPrice))
		fmt.Fprintf(w, "  Average recommended : \033[1;32m%s\033[0m\n", money(r.AverageRecommendedPrice))
		fmt.Fprintf(w, "  Average change      : %+.2f%%\n", r.AveragePriceChangePct)
		if r.LargestChange != nil {
			fmt.Fprintf(w, "  Largest change      : %s (%s → %s)\n",
				truncate(r.LargestChange.Optimized.Title, 30),
				money(r.LargestChange.Attributes.Price),
				money(r.LargestChange.Optimized.Price))
		}
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if len(r.AverageStageTime) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Average Stage Time\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		for _, stage := range sortedKeys(r.AverageStageTime) {
			fmt.Fprintf(w, "  %-12s %s\n", stage, r.AverageStageTime[stage].Round(time.Millisecond))
		}
		fmt.Fprintln(w)
	}

	if len(r.TopKeywords) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Top Keywords\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		for i, k := range r.TopKeywords {
			fmt.Fprintf(w, "  %-5s %s\n", humanize.Ordinal(i+1), k)
		}
		fmt.Fprintln(w)
	}

	if r.Failed > 0 {
		fmt.Fprintf(w, "\033[1;33m  Failures by Kind\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		kinds := sortedKeys(r.FailuresByKind)
		sort.SliceStable(kinds, func(i, j int) bool {
			return r.FailuresByKind[kinds[i]] > r.FailuresByKind[kinds[j]]
		})
		for _, k := range kinds {
			bar := strings.Repeat("█", r.FailuresByKind[k])
			fmt.Fprintf(w, "  %-20s %s (%d)\n", k, bar, r.FailuresByKind[k])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

// PrintResult writes a short coloured summary of one run.
func PrintResult(w io.Writer, r *models.PipelineResult) {
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;36m  ✔ %s\033[0m\n", r.URL)
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Run      : %s\n", r.RunID)
	if r.Attributes != nil {
		fmt.Fprintf(w, "  Original : %s\n", truncate(r.Attributes.Title, 60))
	}
	if r.Optimized != nil {
		fmt.Fprintf(w, "  Title    : \033[1m%s\033[0m\n", r.Optimized.Title)
		if r.Attributes != nil {
			fmt.Fprintf(w, "  Price    : %s → \033[1;32m%s\033[0m\n", money(r.Attributes.Price), money(r.Optimized.Price))
		}
		fmt.Fprintf(w, "  Keywords : %s\n", strings.Join(r.Optimized.Keywords, ", "))
	}
	if r.Comparison != nil {
		fmt.Fprintf(w, "  Market   : %d comparables, confidence %.0f%%\n",
			len(r.Comparison.Items), r.Comparison.Prices.Confidence*100)
	}
	fmt.Fprintf(w, "  Rendered : %s\n", humanize.Bytes(uint64(len(r.Rendered))))
	fmt.Fprintf(w, "  Elapsed  : %s\n", r.Elapsed.Round(time.Millisecond))
}

func money(f float64) string {
	return "$" + humanize.CommafWithDigits(f, 2)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
