package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Criterion names one filterable axis of a search.
type Criterion string

const (
	CriterionOverall     Criterion = "overall"
	CriterionCleanliness Criterion = "cleanliness"
	CriterionService     Criterion = "service"
	CriterionLocation    Criterion = "location"
	CriterionComfort     Criterion = "comfort"
	CriterionPrice       Criterion = "price"
)

// Criteria lists every accepted criterion, overall first.
var Criteria = []Criterion{
	CriterionOverall, CriterionCleanliness, CriterionService,
	CriterionLocation, CriterionComfort, CriterionPrice,
}

// Dimension reports the slot a criterion filters on; ok is false for overall.
func (c Criterion) Dimension() (Dimension, bool) {
	switch c {
	case CriterionCleanliness:
		return Cleanliness, true
	case CriterionService:
		return Service, true
	case CriterionLocation:
		return Location, true
	case CriterionComfort:
		return Comfort, true
	case CriterionPrice:
		return Price, true
	}
	return 0, false
}

func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Criteria {
		if k == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown criterion %q", s)
}

// SearchCriteria maps criteria to minimum thresholds. A missing or nil entry
// imposes no constraint.
type SearchCriteria map[Criterion]*float64

func (sc SearchCriteria) Validate() error {
	for k, v := range sc {
		if c, err := ParseCriterion(string(k)); err != nil {
			return err
		} else if c != k {
			return fmt.Errorf("criterion %q must be lower case", k)
		}
		if v != nil && math.IsNaN(*v) {
			return fmt.Errorf("threshold for %s is not a number", k)
		}
	}
	return nil
}

// Active returns the constrained criteria in a stable order.
func (sc SearchCriteria) Active() []Criterion {
	out := make([]Criterion, 0, len(sc))
	for _, k := range Criteria {
		if v, ok := sc[k]; ok && v != nil {
			out = append(out, k)
		}
	}
	return out
}

// Key is a canonical string form, used for cache keys.
func (sc SearchCriteria) Key() string {
	parts := make([]string, 0, len(sc))
	for _, k := range sc.Active() {
		parts = append(parts, fmt.Sprintf("%s>=%g", k, *sc[k]))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
