package hotels

import (
	"context"
	"database/sql"
	"strings"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/sqldb"
)

// MaxSearchResults caps Search.
const MaxSearchResults = 200

type Search struct {
	session *sqldb.Session
}

func NewSearch(s *sqldb.Session) *Search { return &Search{session: s} }

type searchRow struct {
	Name         string          `db:"name"`
	City         sql.NullString  `db:"city"`
	Country      sql.NullString  `db:"country"`
	Overall      float64         `db:"overall"`
	Cleanliness  sql.NullFloat64 `db:"cleanliness"`
	Service      sql.NullFloat64 `db:"service"`
	Location     sql.NullFloat64 `db:"location"`
	Comfort      sql.NullFloat64 `db:"comfort"`
	Price        sql.NullFloat64 `db:"price"`
	TotalReviews int64           `db:"total_reviews"`
}

// Search lists hotels in city (all cities when empty) meeting every non-nil
// minimum in criteria. Only hotels with at least one feature score qualify.
func (s *Search) Search(ctx context.Context, city string, criteria domain.SearchCriteria) ([]domain.HotelRating, error) {
	const op = "search"
	if err := criteria.Validate(); err != nil {
		return nil, domain.E(domain.KindInvalid, op, err)
	}
	tmpl, args := buildSearch(strings.TrimSpace(city), criteria)

	out := []domain.HotelRating{}
	err := s.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		q, err := h.Render(tmpl)
		if err != nil {
			return err
		}
		var rows []searchRow
		if err := h.Conn.SelectContext(ctx, &rows, q, args...); err != nil {
			return err
		}
		for _, sr := range rows {
			out = append(out, sr.toDomain())
		}
		return nil
	})
	return out, err
}

// buildSearch appends one HAVING term per active criterion. Thresholds are
// always bound; only fixed aggregate expressions reach the statement text.
func buildSearch(city string, criteria domain.SearchCriteria) (string, []any) {
	var b strings.Builder
	b.WriteString(searchSelectSQL)
	args := []any{city, city}
	for _, c := range criteria.Active() {
		b.WriteString("\n   AND ")
		b.WriteString(searchHavingExpr[c])
		b.WriteString(" >= ?")
		args = append(args, *criteria[c])
	}
	b.WriteString(searchOrderSQL)
	args = append(args, MaxSearchResults)
	return b.String(), args
}

func (r searchRow) toDomain() domain.HotelRating {
	out := domain.HotelRating{
		Name:         r.Name,
		City:         r.City.String,
		Country:      r.Country.String,
		TotalReviews: int(r.TotalReviews),
		OverallScore: domain.Round2(r.Overall),
	}
	for d, v := range map[domain.Dimension]sql.NullFloat64{
		domain.Cleanliness: r.Cleanliness,
		domain.Service:     r.Service,
		domain.Location:    r.Location,
		domain.Comfort:     r.Comfort,
		domain.Price:       r.Price,
	} {
		if v.Valid {
			out.Scores[d] = domain.Round2(v.Float64)
		}
	}
	return out
}
