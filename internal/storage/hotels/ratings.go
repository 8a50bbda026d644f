// Package hotels holds the read and write paths over the hotel-rating schema.
// Every method needs a resolved namespace and fails with KindSchemaNotFound
// otherwise.
package hotels

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/sqldb"
)

// MaxReviews caps GetReviews.
const MaxReviews = 50

type Ratings struct {
	session *sqldb.Session
}

func NewRatings(s *sqldb.Session) *Ratings { return &Ratings{session: s} }

type hotelRow struct {
	ID      int64          `db:"hotel_id"`
	Name    string         `db:"hotel_name"`
	City    sql.NullString `db:"city"`
	Country sql.NullString `db:"country"`
}

type reviewStats struct {
	Total int64           `db:"total"`
	Mean  sql.NullFloat64 `db:"mean"`
}

type featureScore struct {
	Name  string  `db:"feature_name"`
	Score float64 `db:"score"`
}

// GetRating aggregates the best match for nameFragment.
func (r *Ratings) GetRating(ctx context.Context, nameFragment string) (domain.HotelRating, error) {
	const op = "ratings.get"
	frag := strings.TrimSpace(nameFragment)
	if frag == "" {
		return domain.HotelRating{}, domain.E(domain.KindInvalid, op, errors.New("hotel name is required"))
	}

	var out domain.HotelRating
	err := r.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		q, err := h.Render(findHotelSQL)
		if err != nil {
			return err
		}
		var hotel hotelRow
		if err := h.Conn.GetContext(ctx, &hotel, q, "%"+escapeLike(frag)+"%", frag); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.E(domain.KindNotFound, op, domain.ErrNotFound)
			}
			return err
		}

		if q, err = h.Render(reviewStatsSQL); err != nil {
			return err
		}
		var stats reviewStats
		if err := h.Conn.GetContext(ctx, &stats, q, hotel.ID); err != nil {
			return err
		}

		if q, err = h.Render(featureScoresSQL); err != nil {
			return err
		}
		var scores []featureScore
		if err := h.Conn.SelectContext(ctx, &scores, q, hotel.ID); err != nil {
			return err
		}

		rows := make([]domain.FeatureRow, len(scores))
		for i, s := range scores {
			rows[i] = domain.FeatureRow{FeatureName: s.Name, Score: s.Score}
		}
		out = aggregate(hotel, stats, rows)
		return nil
	})
	return out, err
}

// aggregate files feature scores into dimension slots. Overall is the mean of
// all feature scores, matched or not; without any it falls back to the review
// mean, then 0.
func aggregate(h hotelRow, stats reviewStats, rows []domain.FeatureRow) domain.HotelRating {
	out := domain.HotelRating{
		Name:         h.Name,
		City:         h.City.String,
		Country:      h.Country.String,
		TotalReviews: int(stats.Total),
	}
	var filled [domain.NumDimensions]bool
	var sum float64
	for _, fr := range rows {
		sum += fr.Score
		d, ok := domain.DimensionFor(fr.FeatureName)
		if !ok {
			continue
		}
		if !filled[d] || fr.Score > out.Scores[d] {
			out.Scores[d] = domain.Round2(fr.Score)
			filled[d] = true
		}
	}
	switch {
	case len(rows) > 0:
		out.OverallScore = domain.Round2(sum / float64(len(rows)))
	case stats.Mean.Valid:
		out.OverallScore = domain.Round2(stats.Mean.Float64)
	}
	return out
}

type listRow struct {
	Name    string  `db:"name"`
	Score   float64 `db:"score"`
	Reviews int64   `db:"reviews"`
}

func (r *Ratings) ListByCity(ctx context.Context, city string) ([]domain.HotelListItem, error) {
	const op = "ratings.list_by_city"
	out := []domain.HotelListItem{}
	err := r.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		q, err := h.Render(listByCitySQL)
		if err != nil {
			return err
		}
		var rows []listRow
		if err := h.Conn.SelectContext(ctx, &rows, q, strings.TrimSpace(city)); err != nil {
			return err
		}
		for _, lr := range rows {
			out = append(out, domain.HotelListItem{
				Name:           lr.Name,
				AggregateScore: domain.Round2(lr.Score),
				ReviewCount:    int(lr.Reviews),
			})
		}
		return nil
	})
	return out, err
}

type reviewRow struct {
	Reviewer sql.NullString  `db:"reviewer_name"`
	Text     sql.NullString  `db:"review_text"`
	Date     sql.NullTime    `db:"review_date"`
	Rating   sql.NullFloat64 `db:"overall_rating"`
}

// GetReviews returns the newest reviews of the hotel named exactly hotelName,
// ignoring case.
func (r *Ratings) GetReviews(ctx context.Context, hotelName string) ([]domain.HotelReview, error) {
	const op = "ratings.reviews"
	out := []domain.HotelReview{}
	err := r.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		q, err := h.Render(reviewsSQL)
		if err != nil {
			return err
		}
		var rows []reviewRow
		if err := h.Conn.SelectContext(ctx, &rows, q, strings.TrimSpace(hotelName), MaxReviews); err != nil {
			return err
		}
		for _, rr := range rows {
			rv := domain.HotelReview{
				ReviewerName: strings.TrimSpace(rr.Reviewer.String),
				Text:         rr.Text.String,
				Rating:       rr.Rating.Float64,
			}
			if rv.ReviewerName == "" {
				rv.ReviewerName = domain.AnonymousReviewer
			}
			if rr.Date.Valid {
				rv.Date = rr.Date.Time.UTC()
			}
			out = append(out, rv)
		}
		return nil
	})
	return out, err
}

func (r *Ratings) Cities(ctx context.Context) ([]string, error) {
	return r.column(ctx, "ratings.cities", citiesSQL)
}

func (r *Ratings) HotelsByCity(ctx context.Context, city string) ([]string, error) {
	return r.column(ctx, "ratings.hotels_by_city", hotelsByCitySQL, strings.TrimSpace(city))
}

func (r *Ratings) column(ctx context.Context, op, tmpl string, args ...any) ([]string, error) {
	out := []string{}
	err := r.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		q, err := h.Render(tmpl)
		if err != nil {
			return err
		}
		return h.Conn.SelectContext(ctx, &out, q, args...)
	})
	return out, err
}

// escapeLike neutralizes LIKE wildcards; templates declare ESCAPE '!'.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

