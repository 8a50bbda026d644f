package hotels_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/hotels"
	"hotel_rating/internal/testutil"
)

func TestAddFeature_EmptyTable(t *testing.T) {
	f := testutil.SQLite(t, testutil.Full(), nil)
	f.Resolve(t, testutil.Own("GUEST"))
	a := hotels.NewAdmin(f.Session)

	id, err := a.AddFeature(context.Background(), "Cleanliness")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	active, err := a.ActiveFeatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Cleanliness"}, active)
}

func TestAddFeature_NextID(t *testing.T) {
	a := hotels.NewAdmin(hotelier(t).Session)

	id, err := a.AddFeature(context.Background(), " Pool ")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)

	active, err := a.ActiveFeatures(context.Background())
	require.NoError(t, err)
	assert.Contains(t, active, "Pool")
	assert.NotContains(t, active, "Breakfast")

	_, err = a.AddFeature(context.Background(), "")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestAddSeedWord(t *testing.T) {
	a := hotels.NewAdmin(hotelier(t).Session)
	ctx := context.Background()

	id, err := a.AddSeedWord(ctx, "Cleanliness", "spotless", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = a.AddSeedWord(ctx, "Cleanliness", "dirty", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestAddSeedWord_Validation(t *testing.T) {
	a := hotels.NewAdmin(hotelier(t).Session)
	ctx := context.Background()

	for _, w := range []int{0, 2, -5} {
		_, err := a.AddSeedWord(ctx, "Cleanliness", "spotless", w)
		assert.Equal(t, domain.KindInvalid, domain.KindOf(err), w)
	}
	_, err := a.AddSeedWord(ctx, "Cleanliness", " ", 1)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = a.AddSeedWord(ctx, "Spa", "relaxing", 1)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
