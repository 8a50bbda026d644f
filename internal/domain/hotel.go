package domain

import (
	"math"
	"strings"
)

// Dimension is one of the fixed rating axes a feature score is filed under.
type Dimension int

const (
	Cleanliness Dimension = iota
	Service
	Location
	Comfort
	Price

	NumDimensions = 5
)

var dimensionNames = [NumDimensions]string{"cleanliness", "service", "location", "comfort", "price"}

func (d Dimension) String() string {
	if d < 0 || int(d) >= NumDimensions {
		return "unknown"
	}
	return dimensionNames[d]
}

// dimensionRules are checked in order against the upper-cased feature name;
// the first rule with a matching fragment wins.
var dimensionRules = []struct {
	dim   Dimension
	frags []string
}{
	{Cleanliness, []string{"CLEAN"}},
	{Service, []string{"SERVICE"}},
	{Location, []string{"LOCATION"}},
	{Comfort, []string{"COMFORT"}},
	{Price, []string{"PRICE", "VALUE"}},
}

// DimensionFor maps a feature name onto a dimension slot by case-insensitive
// substring containment. ok is false for features outside the five slots.
func DimensionFor(featureName string) (d Dimension, ok bool) {
	up := strings.ToUpper(featureName)
	for _, r := range dimensionRules {
		for _, f := range r.frags {
			if strings.Contains(up, f) {
				return r.dim, true
			}
		}
	}
	return 0, false
}

// DimensionFragments returns the upper-case fragments that select d, in rule order.
func DimensionFragments(d Dimension) []string {
	for _, r := range dimensionRules {
		if r.dim == d {
			return append([]string(nil), r.frags...)
		}
	}
	return nil
}

type HotelRating struct {
	Name         string                 `json:"name"`
	City         string                 `json:"city"`
	Country      string                 `json:"country"`
	TotalReviews int                    `json:"total_reviews"`
	OverallScore float64                `json:"overall_score"`
	Scores       [NumDimensions]float64 `json:"dimension_scores"`
}

func (h HotelRating) Score(d Dimension) float64 { return h.Scores[d] }

// DimensionScores is the keyed form of Scores used by JSON encoders.
func (h HotelRating) DimensionScores() map[string]float64 {
	out := make(map[string]float64, NumDimensions)
	for i, v := range h.Scores {
		out[Dimension(i).String()] = v
	}
	return out
}

// HotelListItem is the summary row shown in city listings.
type HotelListItem struct {
	Name           string  `json:"name"`
	AggregateScore float64 `json:"aggregate_score"`
	ReviewCount    int     `json:"review_count"`
}

// FeatureRow is a feature score joined from the rating fact table.
type FeatureRow struct {
	FeatureName string
	Score       float64
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
