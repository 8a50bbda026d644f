package app

import (
	"strings"

	"hotel_rating/internal/domain"
)

const featuresKey = "features"

// CityReport summarizes one city for dashboards and the CLI.
type CityReport struct {
	City         string                 `json:"city"`
	Hotels       int                    `json:"hotels"`
	Rated        int                    `json:"rated"`
	Reviews      int                    `json:"reviews"`
	AverageScore float64                `json:"average_score"`
	Listing      []domain.HotelListItem `json:"listing"`
	TopRated     []domain.HotelRating   `json:"top_rated"`
}

// summarize averages over hotels with a non-zero aggregate; unrated hotels
// would otherwise drag the city down.
func summarize(city string, listing []domain.HotelListItem, ranked []domain.HotelRating, top int) CityReport {
	r := CityReport{
		City:     strings.TrimSpace(city),
		Hotels:   len(listing),
		Rated:    len(ranked),
		Listing:  listing,
		TopRated: ranked,
	}
	if r.Listing == nil {
		r.Listing = []domain.HotelListItem{}
	}
	if top > 0 && len(r.TopRated) > top {
		r.TopRated = r.TopRated[:top]
	}
	if r.TopRated == nil {
		r.TopRated = []domain.HotelRating{}
	}

	var sum float64
	var n int
	for _, it := range listing {
		r.Reviews += it.ReviewCount
		if it.AggregateScore > 0 {
			sum += it.AggregateScore
			n++
		}
	}
	if n > 0 {
		r.AverageScore = domain.Round2(sum / float64(n))
	}
	return r
}
