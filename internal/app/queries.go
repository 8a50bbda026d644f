package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"hotel_rating/internal/domain"
)

// StatusReader exposes the live session snapshot.
type StatusReader interface {
	Status() domain.SessionStatus
}

// FeatureLister lists active features.
type FeatureLister interface {
	ActiveFeatures(ctx context.Context) ([]string, error)
}

type QueryService struct {
	session  StatusReader
	ratings  domain.RatingReader
	search   domain.HotelSearcher
	explorer domain.SchemaExplorer
	features FeatureLister
	cache    domain.Cache
	cacheTTL time.Duration
	group    singleflight.Group
}

type QueryDeps struct {
	Session  StatusReader
	Ratings  domain.RatingReader
	Search   domain.HotelSearcher
	Explorer domain.SchemaExplorer
	Features FeatureLister
	Cache    domain.Cache // optional
}

func NewQueryService(d QueryDeps, ttl time.Duration) *QueryService {
	return &QueryService{
		session:  d.Session,
		ratings:  d.Ratings,
		search:   d.Search,
		explorer: d.Explorer,
		features: d.Features,
		cache:    d.Cache,
		cacheTTL: ttl,
	}
}

// cacheKey scopes key to the identity and namespace the data was read from.
// ok is false while no namespace is resolved; such reads bypass the cache.
func (s *QueryService) cacheKey(parts ...string) (string, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return "", false
	}
	st := s.session.Status()
	if st.Namespace == "" {
		return "", false
	}
	return fmt.Sprintf("%s:%s:%s", st.Identity, st.Namespace, strings.Join(parts, ":")), true
}

func cached[T any](ctx context.Context, s *QueryService, load func(context.Context) (T, error), parts ...string) (T, error) {
	key, ok := s.cacheKey(parts...)
	if !ok {
		return load(ctx)
	}
	var out T
	if hit, err := s.cache.Get(ctx, key, &out); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache get failed")
	} else if hit {
		return out, nil
	}
	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
	return out, nil
}

// ratingFlightTimeout bounds a shared lookup, which outlives any single caller.
const ratingFlightTimeout = 15 * time.Second

// GetRating collapses concurrent lookups of the same fragment, under the same
// identity and namespace, into one query.
func (s *QueryService) GetRating(ctx context.Context, nameFragment string) (domain.HotelRating, error) {
	frag := strings.ToLower(strings.TrimSpace(nameFragment))
	st := s.session.Status()
	key := fmt.Sprintf("rating:%s:%s:%s", st.Identity, st.Namespace, frag)
	ch := s.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ratingFlightTimeout)
		defer cancel()
		return cached(fctx, s, func(ctx context.Context) (domain.HotelRating, error) {
			return s.ratings.GetRating(ctx, nameFragment)
		}, "rating", frag)
	})
	select {
	case <-ctx.Done():
		return domain.HotelRating{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.HotelRating{}, res.Err
		}
		return res.Val.(domain.HotelRating), nil
	}
}

func (s *QueryService) ListByCity(ctx context.Context, city string) ([]domain.HotelListItem, error) {
	return cached(ctx, s, func(ctx context.Context) ([]domain.HotelListItem, error) {
		return s.ratings.ListByCity(ctx, city)
	}, "city", strings.ToLower(strings.TrimSpace(city)))
}

func (s *QueryService) GetReviews(ctx context.Context, hotelName string) ([]domain.HotelReview, error) {
	return cached(ctx, s, func(ctx context.Context) ([]domain.HotelReview, error) {
		return s.ratings.GetReviews(ctx, hotelName)
	}, "reviews", strings.ToLower(strings.TrimSpace(hotelName)))
}

func (s *QueryService) Cities(ctx context.Context) ([]string, error) {
	return cached(ctx, s, s.ratings.Cities, "cities")
}

func (s *QueryService) HotelsByCity(ctx context.Context, city string) ([]string, error) {
	return s.ratings.HotelsByCity(ctx, city)
}

func (s *QueryService) Search(ctx context.Context, city string, criteria domain.SearchCriteria) ([]domain.HotelRating, error) {
	return cached(ctx, s, func(ctx context.Context) ([]domain.HotelRating, error) {
		return s.search.Search(ctx, city, criteria)
	}, "search", strings.ToLower(strings.TrimSpace(city)), criteria.Key())
}

func (s *QueryService) Features(ctx context.Context) ([]string, error) {
	return cached(ctx, s, s.features.ActiveFeatures, featuresKey)
}

func (s *QueryService) Namespaces(ctx context.Context) ([]domain.NamespaceTables, error) {
	return s.explorer.Namespaces(ctx)
}

func (s *QueryService) TableData(ctx context.Context, namespace, table string) (domain.TableData, error) {
	return s.explorer.TableData(ctx, namespace, table)
}

// CityReport reads the city listing and the ranked search in parallel.
func (s *QueryService) CityReport(ctx context.Context, city string, top int) (CityReport, error) {
	var (
		listing []domain.HotelListItem
		ranked  []domain.HotelRating
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listing, err = s.ListByCity(gctx, city)
		return err
	})
	g.Go(func() error {
		var err error
		ranked, err = s.Search(gctx, city, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return CityReport{}, err
	}
	return summarize(city, listing, ranked, top), nil
}
