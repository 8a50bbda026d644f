package hotels_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/hotels"
	"hotel_rating/internal/storage/schema"
	"hotel_rating/internal/testutil"
)

func TestGetRating_FeatureMean(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	got, err := r.GetRating(context.Background(), "grand")
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza", got.Name)
	assert.Equal(t, "Paris", got.City)
	assert.Equal(t, "FR", got.Country)
	assert.Equal(t, 2, got.TotalReviews)
	assert.Equal(t, 4.5, got.OverallScore)
	assert.Equal(t, 4.0, got.Score(domain.Cleanliness))
	assert.Equal(t, 5.0, got.Score(domain.Service))
	assert.Equal(t, 0.0, got.Score(domain.Location))
}

func TestGetRating_UnmatchedFeaturesCountTowardOverall(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	got, err := r.GetRating(context.Background(), "plaza inn")
	require.NoError(t, err)
	assert.Equal(t, "Plaza Inn", got.Name)
	assert.Equal(t, 4.0, got.OverallScore) // (3 + 4 + 5) / 3
	assert.Equal(t, 3.0, got.Score(domain.Cleanliness))
	assert.Equal(t, 4.0, got.Score(domain.Location))
}

func TestGetRating_ReviewMeanFallback(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	got, err := r.GetRating(context.Background(), "Quiet")
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalReviews)
	assert.Equal(t, 3.67, got.OverallScore)
	assert.Equal(t, [domain.NumDimensions]float64{}, got.Scores)

	got, err = r.GetRating(context.Background(), "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalReviews)
	assert.Equal(t, 0.0, got.OverallScore)
}

func TestGetRating_TieBreak(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	// both names contain "plaza"; lowest id wins
	got, err := r.GetRating(context.Background(), "PLAZA")
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza", got.Name)
}

func TestGetRating_NotFound(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	for _, frag := range []string{"Ritz", "G_and", "%"} {
		_, err := r.GetRating(context.Background(), frag)
		require.Error(t, err, frag)
		assert.True(t, errors.Is(err, domain.ErrNotFound), frag)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err), frag)
	}

	_, err := r.GetRating(context.Background(), "  ")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestRatings_RequireResolvedNamespace(t *testing.T) {
	f := testutil.SQLite(t, testutil.Full(seed...), nil)
	r := hotels.NewRatings(f.Session)

	_, err := r.GetRating(context.Background(), "grand")
	assert.Equal(t, domain.KindSchemaNotFound, domain.KindOf(err))

	require.True(t, schema.NewResolver(f.Session).Resolve(context.Background()).HasExpectedTables)
	got, err := r.GetRating(context.Background(), "grand")
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.OverallScore)
}

func TestListByCity(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	got, err := r.ListByCity(context.Background(), "PARIS")
	require.NoError(t, err)
	assert.Equal(t, []domain.HotelListItem{
		{Name: "Grand Plaza", AggregateScore: 4.5, ReviewCount: 2},
		{Name: "Plaza Inn", AggregateScore: 4.0, ReviewCount: 0},
		{Name: "Quiet Rooms", AggregateScore: 3.67, ReviewCount: 3},
		{Name: "Empty House", AggregateScore: 0, ReviewCount: 0},
	}, got)

	got, err = r.ListByCity(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetReviews(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	got, err := r.GetReviews(context.Background(), "grand plaza")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.AnonymousReviewer, got[0].ReviewerName)
	assert.Equal(t, 0.0, got[0].Rating)
	assert.Equal(t, time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, "Alice", got[1].ReviewerName)
	assert.Equal(t, 5.0, got[1].Rating)

	got, err = r.GetReviews(context.Background(), "Quiet Rooms")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Cara", got[0].ReviewerName)
	assert.Equal(t, domain.AnonymousReviewer, got[1].ReviewerName)

	// substring is not enough
	got, err = r.GetReviews(context.Background(), "grand")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetReviews_Capped(t *testing.T) {
	r := hotels.NewRatings(hotelier(t, manyReviews(3, 60)...).Session)

	got, err := r.GetReviews(context.Background(), "Seaside Hotel")
	require.NoError(t, err)
	assert.Len(t, got, hotels.MaxReviews)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Date.After(got[i-1].Date), "reviews must be newest first")
	}
}

func TestCitiesAndHotelsByCity(t *testing.T) {
	r := hotels.NewRatings(hotelier(t).Session)

	cities, err := r.Cities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nice", "Paris", "paris"}, cities)

	names, err := r.HotelsByCity(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, []string{"Empty House", "Grand Plaza", "Plaza Inn", "Quiet Rooms"}, names)
}
