package hotels

import (
	"fmt"
	"strings"

	"hotel_rating/internal/domain"
)

// Templates reference tables as {name}; sqldb.Handle.Render qualifies them for
// the resolved namespace and rebinds the "?" placeholders.

// -----------------------------------------------------------------------------
// RATINGS
// -----------------------------------------------------------------------------

// Substring match; an exact (case-insensitive) name wins, then the lowest id.
const findHotelSQL = `
SELECT h.hotel_id, h.hotel_name, h.city, h.country
FROM {hotel} h
WHERE UPPER(h.hotel_name) LIKE UPPER(?) ESCAPE '!'
ORDER BY CASE WHEN UPPER(h.hotel_name) = UPPER(?) THEN 0 ELSE 1 END, h.hotel_id
LIMIT 1
`

const reviewStatsSQL = `
SELECT COUNT(*) AS total, AVG(v.overall_rating) AS mean
FROM {review} v
WHERE v.hotel_id = ?
`

const featureScoresSQL = `
SELECT f.feature_name, r.score
FROM {rating} r
JOIN {feature} f ON f.feature_id = r.feature_id
WHERE r.hotel_id = ? AND r.score IS NOT NULL
ORDER BY f.feature_id
`

// Feature average, else review average, else 0.
const listByCitySQL = `
SELECT h.hotel_name AS name,
       COALESCE(
         (SELECT AVG(r.score) FROM {rating} r WHERE r.hotel_id = h.hotel_id),
         (SELECT AVG(v.overall_rating) FROM {review} v WHERE v.hotel_id = h.hotel_id),
         0) AS score,
       (SELECT COUNT(*) FROM {review} v WHERE v.hotel_id = h.hotel_id) AS reviews
FROM {hotel} h
WHERE UPPER(h.city) = UPPER(?)
ORDER BY score DESC, h.hotel_name
`

const reviewsSQL = `
SELECT v.reviewer_name, v.review_text, v.review_date, v.overall_rating
FROM {review} v
JOIN {hotel} h ON h.hotel_id = v.hotel_id
WHERE UPPER(h.hotel_name) = UPPER(?)
ORDER BY v.review_date DESC, v.review_id DESC
LIMIT ?
`

const citiesSQL = `
SELECT DISTINCT h.city
FROM {hotel} h
WHERE h.city IS NOT NULL AND h.city <> ''
ORDER BY h.city
`

const hotelsByCitySQL = `
SELECT h.hotel_name
FROM {hotel} h
WHERE UPPER(h.city) = UPPER(?)
ORDER BY h.hotel_name
`

// -----------------------------------------------------------------------------
// SEARCH
// -----------------------------------------------------------------------------

// The search statement is assembled once: the slot CASE and per-dimension aggregates are
// derived from the dimension rules, never from input.
var searchSelectSQL, searchHavingExpr = buildSearchSQL()

func buildSearchSQL() (string, map[domain.Criterion]string) {
	var slot strings.Builder
	slot.WriteString("CASE")
	for d := domain.Dimension(0); int(d) < domain.NumDimensions; d++ {
		var conds []string
		for _, f := range domain.DimensionFragments(d) {
			conds = append(conds, "UPPER(f.feature_name) LIKE '%"+f+"%'")
		}
		fmt.Fprintf(&slot, " WHEN %s THEN %d", strings.Join(conds, " OR "), int(d)+1)
	}
	slot.WriteString(" ELSE 0 END")

	// overall filters on the rounded average the caller sees; one-argument
	// ROUND is the form every supported dialect accepts for both numeric types
	having := map[domain.Criterion]string{domain.CriterionOverall: "ROUND(AVG(s.score) * 100) / 100.0"}
	cols := []string{"AVG(s.score) AS overall"}
	for _, c := range domain.Criteria {
		d, ok := c.Dimension()
		if !ok {
			continue
		}
		expr := fmt.Sprintf("MAX(CASE WHEN s.slot = %d THEN s.score END)", int(d)+1)
		having[c] = expr
		cols = append(cols, expr+" AS "+string(c))
	}

	q := `
SELECT h.hotel_name AS name, h.city, h.country,
       ` + strings.Join(cols, ",\n       ") + `,
       (SELECT COUNT(*) FROM {review} v WHERE v.hotel_id = h.hotel_id) AS total_reviews
FROM {hotel} h
JOIN (
  SELECT r.hotel_id, r.score, ` + slot.String() + ` AS slot
  FROM {rating} r
  JOIN {feature} f ON f.feature_id = r.feature_id
  WHERE r.score IS NOT NULL
) s ON s.hotel_id = h.hotel_id
WHERE (? = '' OR UPPER(h.city) = UPPER(?))
GROUP BY h.hotel_id, h.hotel_name, h.city, h.country
HAVING 1 = 1`
	return q, having
}

const searchOrderSQL = `
ORDER BY overall DESC, h.hotel_name
LIMIT ?
`

// -----------------------------------------------------------------------------
// ADMIN
// -----------------------------------------------------------------------------

const nextFeatureIDSQL = `SELECT COALESCE(MAX(feature_id), 0) + 1 FROM {feature}`

const insertFeatureSQL = `
INSERT INTO {feature} (feature_id, feature_name, is_active)
VALUES (?, ?, 'Y')
`

const featureIDByNameSQL = `SELECT feature_id FROM {feature} WHERE feature_name = ?`

const nextSeedIDSQL = `SELECT COALESCE(MAX(seed_id), 0) + 1 FROM {seed_word}`

const insertSeedSQL = `
INSERT INTO {seed_word} (seed_id, feature_id, seed_phrase, weight)
VALUES (?, ?, ?, ?)
`

const activeFeaturesSQL = `
SELECT feature_name
FROM {feature}
WHERE is_active = 'Y'
ORDER BY feature_name
`
