package services

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"listing-optimizer/errs"
	"listing-optimizer/models"
	"listing-optimizer/utils"
)

// OptimizerConfig holds the engine's fixed limits.
type OptimizerConfig struct {
	TitleLimit       int
	TopKeywords      int
	DescriptionMin   int
	DescriptionMax   int
	MaxSellingPoints int
}

// DefaultOptimizerConfig returns the production limits.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		TitleLimit:       TitleLimit,
		TopKeywords:      MaxKeywords,
		DescriptionMin:   DescriptionMin,
		DescriptionMax:   DescriptionMax,
		MaxSellingPoints: MaxSellingPoints,
	}
}

// Optimizer computes recommended listing content from the original attributes
// and market comparison data. It is deterministic: identical inputs always
// produce identical output.
type Optimizer struct {
	cfg    OptimizerConfig
	logger *utils.Logger
}

func NewOptimizer(cfg OptimizerConfig, logger *utils.Logger) *Optimizer {
	def := DefaultOptimizerConfig()
	if cfg.TitleLimit <= 0 {
		cfg.TitleLimit = def.TitleLimit
	}
	if cfg.TopKeywords <= 0 {
		cfg.TopKeywords = def.TopKeywords
	}
	if cfg.DescriptionMin <= 0 {
		cfg.DescriptionMin = def.DescriptionMin
	}
	if cfg.DescriptionMax <= 0 {
		cfg.DescriptionMax = def.DescriptionMax
	}
	if cfg.MaxSellingPoints <= 0 {
		cfg.MaxSellingPoints = def.MaxSellingPoints
	}
	return &Optimizer{cfg: cfg, logger: logger}
}

// Optimize fails with ValidationFailed on missing inputs and with
// ConsistencyFailed when the result would not preserve the listing's identity
// or price.
func (o *Optimizer) Optimize(attrs *models.ListingAttributes, data *models.ComparisonData) (*models.OptimizedContent, error) {
	if err := validateInputs(attrs, data); err != nil {
		return nil, err
	}

	scored := ScoreKeywords(data.Keywords, o.cfg.TopKeywords)
	keywords := make([]string, len(scored))
	for i, s := range scored {
		keywords[i] = s.Keyword
	}

	out := &models.OptimizedContent{
		Title:         BuildTitle(attrs.Title, scored, o.cfg.TitleLimit),
		Description:   BuildDescription(attrs, o.cfg.DescriptionMin, o.cfg.DescriptionMax),
		Price:         RecommendPrice(attrs.Price, data.Prices),
		Keywords:      keywords,
		SellingPoints: SellingPoints(attrs, data.Prices, o.cfg.MaxSellingPoints),
	}

	if err := o.checkConsistency(attrs, out); err != nil {
		o.logger.Warn("[optimizer] %v", err)
		return nil, err
	}

	o.logger.Info("[optimizer] Title %d chars, price %.2f → %.2f, %d keywords",
		utf8.RuneCountInString(out.Title), attrs.Price, out.Price, len(out.Keywords))
	return out, nil
}

func validateInputs(attrs *models.ListingAttributes, data *models.ComparisonData) error {
	switch {
	case attrs == nil:
		return errs.New(errs.ValidationFailed, "missing listing attributes")
	case strings.TrimSpace(attrs.Title) == "":
		return errs.New(errs.ValidationFailed, "missing title")
	case strings.TrimSpace(attrs.Description) == "":
		return errs.New(errs.ValidationFailed, "missing description")
	case attrs.Price <= 0:
		return errs.New(errs.ValidationFailed, "original price must be positive")
	case data == nil:
		return errs.New(errs.ValidationFailed, "missing comparison data")
	case len(data.Keywords.Ranked) == 0 && len(data.Keywords.Frequency) == 0 && len(data.Keywords.Demand) == 0:
		return errs.New(errs.ValidationFailed, "missing keyword statistics")
	case data.Prices.Average <= 0:
		return errs.New(errs.ValidationFailed, "missing price statistics")
	}
	return nil
}

func (o *Optimizer) checkConsistency(attrs *models.ListingAttributes, out *models.OptimizedContent) error {
	if n := utf8.RuneCountInString(out.Title); n > o.cfg.TitleLimit {
		return errs.New(errs.ConsistencyFailed, "title is %d characters, limit %d", n, o.cfg.TitleLimit)
	}

	words := significantWords(attrs.Title)
	if len(words) > 0 {
		optimized := strings.ToLower(out.Title)
		optimizedWords := significantWords(out.Title)
		kept := 0
		for _, w := range words {
			if wordPresent(w, optimized, optimizedWords) {
				kept++
			}
		}
		if kept*2 < len(words) {
			return errs.New(errs.ConsistencyFailed, "title keeps only %d of %d original words", kept, len(words))
		}
	}

	if drift := math.Abs(out.Price-attrs.Price) / attrs.Price; drift > 0.5 {
		return errs.New(errs.ConsistencyFailed, "recommended price %.2f drifts %.0f%% from %.2f", out.Price, drift*100, attrs.Price)
	}
	return nil
}

func wordPresent(word, optimized string, optimizedWords []string) bool {
	if strings.Contains(optimized, word) {
		return true
	}
	for _, w := range optimizedWords {
		if strings.Contains(word, w) {
			return true
		}
	}
	return false
}

// significantWords returns the lower-cased words longer than two characters.
func significantWords(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}
