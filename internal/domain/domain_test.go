package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionFor(t *testing.T) {
	cases := []struct {
		feature string
		want    Dimension
		ok      bool
	}{
		{"Cleanliness", Cleanliness, true},
		{"Staff Service", Service, true},
		{"location", Location, true},
		{"Room Comfort", Comfort, true},
		{"Price", Price, true},
		{"Value for money", Price, true},
		// first rule wins when several fragments match
		{"Clean service", Cleanliness, true},
		{"Wifi", 0, false},
	}
	for _, c := range cases {
		got, ok := DimensionFor(c.feature)
		assert.Equal(t, c.ok, ok, c.feature)
		if c.ok {
			assert.Equal(t, c.want, got, c.feature)
		}
	}
	assert.Equal(t, []string{"PRICE", "VALUE"}, DimensionFragments(Price))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.67, Round2(11.0/3.0))
	assert.Equal(t, 4.5, Round2(4.5))
	assert.Equal(t, 0.0, Round2(0))
}

func TestSearchCriteria(t *testing.T) {
	v := 3.5
	sc := SearchCriteria{CriterionPrice: &v, CriterionOverall: &v, CriterionService: nil}
	require.NoError(t, sc.Validate())
	assert.Equal(t, []Criterion{CriterionOverall, CriterionPrice}, sc.Active())
	assert.Equal(t, "overall>=3.5,price>=3.5", sc.Key())

	assert.Error(t, SearchCriteria{"stars": &v}.Validate())
	assert.Error(t, SearchCriteria{"Price": &v}.Validate())

	d, ok := CriterionCleanliness.Dimension()
	assert.True(t, ok)
	assert.Equal(t, Cleanliness, d)
	_, ok = CriterionOverall.Dimension()
	assert.False(t, ok)
}

func TestDescriptor(t *testing.T) {
	d := ConnectionDescriptor{Host: "db", Port: "3306", ServiceName: "hotels", User: " guest ", Password: "pw"}
	require.NoError(t, d.Validate())
	assert.Equal(t, "GUEST", d.Identity())
	assert.NotContains(t, d.String(), "pw")

	e := d.WithCredentials("system", "secret")
	assert.Equal(t, "SYSTEM", e.Identity())
	assert.Equal(t, " guest ", d.User, "original descriptor is a value")

	err := ConnectionDescriptor{Host: "db"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name, user")
}

func TestIdent(t *testing.T) {
	for _, ok := range []string{"hotel", "HOTELIER", "_x", "a$b#1"} {
		_, err := ParseIdent(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "1abc", "a b", `x"; DROP TABLE hotel`, "a.b"} {
		_, err := ParseIdent(bad)
		assert.Error(t, err, bad)
	}
	assert.True(t, MustIdent("Hotel").EqualFold("HOTEL"))
	assert.Panics(t, func() { MustIdent("no way") })
}

func TestErrorKinds(t *testing.T) {
	base := E(KindNotFound, "ratings.get", ErrNotFound)
	wrapped := E(KindQuery, "session.acquire", fmt.Errorf("outer: %w", base))

	assert.Equal(t, KindNotFound, KindOf(wrapped), "inner kind survives rewrapping")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "busy", KindBusy.String())
}
