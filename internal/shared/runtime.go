package shared

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	redisad "hotel_rating/internal/adapters/redis"
	"hotel_rating/internal/app"
	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/hotels"
	"hotel_rating/internal/storage/schema"
	"hotel_rating/internal/storage/sqldb"
)

// Runtime is the wired object graph shared by the API and the CLI.
type Runtime struct {
	Session *sqldb.Session
	S       *app.SessionService
	Q       *app.QueryService
	Admin   *app.AdminService

	redis *redisad.Cache
}

// Build wires storage, cache and services. The cache is optional: an empty or
// unreachable REDIS_ADDR runs without one.
func Build(ctx context.Context, c Config) (*Runtime, error) {
	d, err := c.Dialect()
	if err != nil {
		return nil, err
	}
	sess := sqldb.NewSession(d, sqldb.WithElevatedUser(c.ElevatedUser))

	var cache domain.Cache
	rt := &Runtime{Session: sess}
	if c.RedisAddr != "" {
		rc := redisad.New(c.RedisAddr, c.RedisPass, c.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rc.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", c.RedisAddr).Msg("redis unavailable; running without cache")
			_ = rc.Close()
		} else {
			cache, rt.redis = rc, rc
		}
	}

	admin := hotels.NewAdmin(sess)
	rt.S = app.NewSessionService(sess, schema.NewResolver(sess), c.ElevateRPS)
	rt.Q = app.NewQueryService(app.QueryDeps{
		Session:  sess,
		Ratings:  hotels.NewRatings(sess),
		Search:   hotels.NewSearch(sess),
		Explorer: schema.NewExplorer(sess),
		Features: admin,
		Cache:    cache,
	}, c.CacheTTL)
	rt.Admin = app.NewAdminService(admin, sess, cache)
	return rt, nil
}

// Login validates the configured descriptor and resolves the schema.
func (rt *Runtime) Login(ctx context.Context, c Config) (domain.SchemaCapability, error) {
	return rt.S.Login(ctx, c.Descriptor())
}

func (rt *Runtime) Close() {
	if err := rt.Session.Close(); err != nil {
		log.Warn().Err(err).Msg("closing session failed")
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}
