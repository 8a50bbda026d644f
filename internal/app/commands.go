package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_rating/internal/adapters/observability"
	"hotel_rating/internal/domain"
)

// SessionService drives session transitions and re-resolves the schema after
// each one, so callers always see the capability of the current identity.
type SessionService struct {
	session  domain.SessionManager
	resolver domain.CapabilityResolver
	elevate  *rate.Limiter
}

// NewSessionService allows elevateRPS elevation attempts per second with a
// burst of 3. elevateRPS <= 0 disables the limit.
func NewSessionService(s domain.SessionManager, r domain.CapabilityResolver, elevateRPS float64) *SessionService {
	lim := rate.NewLimiter(rate.Inf, 0)
	if elevateRPS > 0 {
		lim = rate.NewLimiter(rate.Limit(elevateRPS), 3)
	}
	return &SessionService{session: s, resolver: r, elevate: lim}
}

func (s *SessionService) Login(ctx context.Context, d domain.ConnectionDescriptor) (domain.SchemaCapability, error) {
	if err := s.session.Validate(ctx, d); err != nil {
		return domain.SchemaCapability{}, err
	}
	return s.Capability(ctx), nil
}

func (s *SessionService) Elevate(ctx context.Context, systemPassword string) (domain.SchemaCapability, error) {
	if !s.elevate.Allow() {
		observability.ObserveSession("elevate", "throttled")
		log.Warn().Msg("elevation attempt throttled")
		return domain.SchemaCapability{}, domain.E(domain.KindBusy, "session.elevate", domain.ErrElevateThrottle)
	}
	if err := s.session.Elevate(ctx, systemPassword); err != nil {
		return domain.SchemaCapability{}, err
	}
	return s.Capability(ctx), nil
}

func (s *SessionService) Restore(ctx context.Context) (domain.SchemaCapability, error) {
	if err := s.session.Restore(ctx); err != nil {
		return domain.SchemaCapability{}, err
	}
	return s.Capability(ctx), nil
}

// Capability recomputes where the hotel schema lives for the current identity.
func (s *SessionService) Capability(ctx context.Context) domain.SchemaCapability {
	return s.resolver.Resolve(ctx)
}

func (s *SessionService) Status() domain.SessionStatus { return s.session.Status() }

// AdminService fronts feature and seed word writes and evicts the cached
// feature list after each one.
type AdminService struct {
	admin   domain.AdminWriter
	session StatusReader
	cache   domain.Cache
}

func NewAdminService(a domain.AdminWriter, s StatusReader, c domain.Cache) *AdminService {
	return &AdminService{admin: a, session: s, cache: c}
}

func (s *AdminService) AddFeature(ctx context.Context, name string) (int64, error) {
	id, err := s.admin.AddFeature(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Msg("add feature failed")
		return 0, err
	}
	s.invalidateFeatures(ctx)
	return id, nil
}

func (s *AdminService) AddSeedWord(ctx context.Context, featureName, phrase string, weight int) (int64, error) {
	id, err := s.admin.AddSeedWord(ctx, featureName, phrase, weight)
	if err != nil {
		log.Warn().Err(err).Str("feature", featureName).Msg("add seed word failed")
		return 0, err
	}
	return id, nil
}

func (s *AdminService) invalidateFeatures(ctx context.Context) {
	if s.cache == nil {
		return
	}
	st := s.session.Status()
	key := fmt.Sprintf("%s:%s:%s", st.Identity, st.Namespace, featuresKey)
	if err := s.cache.Del(ctx, key); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache del failed")
	}
}
