package sqldb

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"hotel_rating/internal/adapters/observability"
	"hotel_rating/internal/domain"
)

// DefaultElevatedUser is the privileged account used by Elevate.
const DefaultElevatedUser = "SYSTEM"

type Option func(*Session)

func WithElevatedUser(user string) Option {
	return func(s *Session) {
		if user != "" {
			s.elevatedUser = user
		}
	}
}

// Session owns the single live connection handle and identity.
//
// Validate, Elevate and Restore are exclusive transitions: a transition that
// finds another one running is rejected with KindBusy. Every operation holds
// the read side of mu for its whole duration, so a transition waits for
// in-flight operations and no operation observes two identities.
type Session struct {
	dialect      Dialect
	elevatedUser string

	transition sync.Mutex

	mu        sync.RWMutex
	db        *sqlx.DB
	current   domain.ConnectionDescriptor
	original  *domain.ConnectionDescriptor
	identity  string
	elevated  bool
	namespace *domain.Namespace
	gen       uint64
}

func NewSession(d Dialect, opts ...Option) *Session {
	s := &Session{dialect: d, elevatedUser: DefaultElevatedUser}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Dialect() Dialect { return s.dialect }

// Validate opens d and, on success, makes it both the original and the current
// descriptor. On failure the session is left as it was.
func (s *Session) Validate(ctx context.Context, d domain.ConnectionDescriptor) error {
	const op = "session.validate"
	if err := d.Validate(); err != nil {
		return domain.E(domain.KindInvalid, op, err)
	}
	if !s.transition.TryLock() {
		observability.ObserveSession("validate", "busy")
		return domain.E(domain.KindBusy, op, domain.ErrTransitionBusy)
	}
	defer s.transition.Unlock()

	db, err := s.open(ctx, d)
	if err != nil {
		observability.ObserveSession("validate", "error")
		log.Warn().Err(err).Str("descriptor", d.String()).Msg("connection validation failed")
		return domain.E(domain.KindConnection, op, err)
	}
	orig := d
	s.swap(db, d, &orig, false)
	observability.ObserveSession("validate", "ok")
	log.Info().Str("identity", d.Identity()).Str("dialect", s.dialect.Name()).Msg("session validated")
	return nil
}

// Elevate switches the current identity to the elevated user. The original
// descriptor is kept for Restore.
func (s *Session) Elevate(ctx context.Context, systemPassword string) error {
	const op = "session.elevate"
	if !s.transition.TryLock() {
		observability.ObserveSession("elevate", "busy")
		return domain.E(domain.KindBusy, op, domain.ErrTransitionBusy)
	}
	defer s.transition.Unlock()

	s.mu.RLock()
	cur, orig := s.current, s.original
	s.mu.RUnlock()
	if orig == nil {
		observability.ObserveSession("elevate", "error")
		return domain.E(domain.KindConnection, op, domain.ErrNoSession)
	}

	next := cur.WithCredentials(s.elevatedUser, systemPassword)
	db, err := s.open(ctx, next)
	if err != nil {
		observability.ObserveSession("elevate", "error")
		log.Warn().Err(err).Str("identity", next.Identity()).Msg("elevation failed")
		return domain.E(domain.KindConnection, op, err)
	}
	s.swap(db, next, orig, true)
	observability.ObserveSession("elevate", "ok")
	log.Info().Str("identity", next.Identity()).Msg("session elevated")
	return nil
}

// Restore reopens the original descriptor. It is all-or-nothing: on failure
// the current (possibly elevated) state stays in place.
func (s *Session) Restore(ctx context.Context) error {
	const op = "session.restore"
	if !s.transition.TryLock() {
		observability.ObserveSession("restore", "busy")
		return domain.E(domain.KindBusy, op, domain.ErrTransitionBusy)
	}
	defer s.transition.Unlock()

	s.mu.RLock()
	orig := s.original
	s.mu.RUnlock()
	if orig == nil {
		observability.ObserveSession("restore", "error")
		return domain.E(domain.KindConnection, op, domain.ErrNoSession)
	}

	db, err := s.open(ctx, *orig)
	if err != nil {
		observability.ObserveSession("restore", "error")
		log.Warn().Err(err).Str("identity", orig.Identity()).Msg("restore failed")
		return domain.E(domain.KindConnection, op, err)
	}
	s.swap(db, *orig, orig, false)
	observability.ObserveSession("restore", "ok")
	log.Info().Str("identity", orig.Identity()).Msg("session restored")
	return nil
}

func (s *Session) open(ctx context.Context, d domain.ConnectionDescriptor) (*sqlx.DB, error) {
	dsn, err := s.dialect.DSN(d)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(s.dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// swap installs a freshly opened handle. The resolved namespace is dropped:
// capability must be resolved again under the new identity.
func (s *Session) swap(db *sqlx.DB, cur domain.ConnectionDescriptor, orig *domain.ConnectionDescriptor, elevated bool) {
	s.mu.Lock()
	old := s.db
	s.db = db
	s.current = cur
	s.original = orig
	s.identity = cur.Identity()
	s.elevated = elevated
	s.namespace = nil
	s.gen++
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Msg("closing previous handle failed")
		}
	}
}

// SetNamespace records the resolved namespace unless a transition happened
// since gen was observed.
func (s *Session) SetNamespace(gen uint64, ns *domain.Namespace) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	if ns == nil {
		s.namespace = nil
		return true
	}
	cp := *ns
	s.namespace = &cp
	return true
}

func (s *Session) Status() domain.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := domain.SessionStatus{
		Connected: s.db != nil,
		Identity:  s.identity,
		Elevated:  s.elevated,
		Dialect:   s.dialect.Name(),
	}
	if s.namespace != nil {
		st.Namespace = s.namespace.String()
	}
	return st
}

// Acquire runs fn on one connection checked out for this operation only. The
// connection is returned to the pool on every path.
func (s *Session) Acquire(ctx context.Context, op string, fn func(ctx context.Context, h *Handle) error) (err error) {
	start := time.Now()
	defer func() {
		observability.ObserveDB(op, outcome(err), time.Since(start))
		if err != nil {
			log.Debug().Err(err).Str("op", op).Dur("took", time.Since(start)).Msg("db operation failed")
		}
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return domain.E(domain.KindConnection, op, domain.ErrNoSession)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return domain.E(domain.KindConnection, op, err)
	}
	defer conn.Close()

	if err := s.dialect.InitConn(ctx, conn); err != nil {
		return domain.E(domain.KindConnection, op, err)
	}

	h := &Handle{
		Conn:     conn,
		Dialect:  s.dialect,
		Identity: s.identity,
		Gen:      s.gen,
	}
	if s.namespace != nil {
		ns := *s.namespace
		h.Namespace = &ns
	}
	if err := fn(ctx, h); err != nil {
		return domain.E(domain.KindQuery, op, err)
	}
	return nil
}

// Close releases the current handle at shutdown.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.namespace = nil
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
