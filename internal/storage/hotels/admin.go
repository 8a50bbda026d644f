package hotels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/sqldb"
)

// Admin writes to the feature and seed word tables. It does not check the
// session's elevation; database grants decide whether a write is allowed.
type Admin struct {
	session *sqldb.Session
}

func NewAdmin(s *sqldb.Session) *Admin { return &Admin{session: s} }

// AddFeature inserts an active feature with id max(feature_id)+1.
func (a *Admin) AddFeature(ctx context.Context, name string) (int64, error) {
	const op = "admin.add_feature"
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, domain.E(domain.KindInvalid, op, errors.New("feature name is required"))
	}

	var id int64
	err := a.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		return inTx(ctx, h, func(tx *sqlx.Tx) error {
			q, err := h.Render(nextFeatureIDSQL)
			if err != nil {
				return err
			}
			if err := tx.GetContext(ctx, &id, q); err != nil {
				return err
			}
			if q, err = h.Render(insertFeatureSQL); err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, q, id, name)
			return err
		})
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("feature_id", id).Str("name", name).Msg("feature added")
	return id, nil
}

// AddSeedWord attaches phrase to the feature named exactly featureName.
// weight is +1 for a positive seed and -1 for a negative one.
func (a *Admin) AddSeedWord(ctx context.Context, featureName, phrase string, weight int) (int64, error) {
	const op = "admin.add_seed_word"
	featureName, phrase = strings.TrimSpace(featureName), strings.TrimSpace(phrase)
	switch {
	case weight != 1 && weight != -1:
		return 0, domain.E(domain.KindInvalid, op, fmt.Errorf("weight must be 1 or -1, got %d", weight))
	case featureName == "":
		return 0, domain.E(domain.KindInvalid, op, errors.New("feature name is required"))
	case phrase == "":
		return 0, domain.E(domain.KindInvalid, op, errors.New("seed phrase is required"))
	}

	var id int64
	err := a.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		return inTx(ctx, h, func(tx *sqlx.Tx) error {
			q, err := h.Render(featureIDByNameSQL)
			if err != nil {
				return err
			}
			var featureID int64
			if err := tx.GetContext(ctx, &featureID, q, featureName); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return domain.E(domain.KindNotFound, op, fmt.Errorf("feature %q: %w", featureName, domain.ErrNotFound))
				}
				return err
			}
			if q, err = h.Render(nextSeedIDSQL); err != nil {
				return err
			}
			if err := tx.GetContext(ctx, &id, q); err != nil {
				return err
			}
			if q, err = h.Render(insertSeedSQL); err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, q, id, featureID, phrase, weight)
			return err
		})
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("seed_id", id).Str("feature", featureName).Int("weight", weight).Msg("seed word added")
	return id, nil
}

func (a *Admin) ActiveFeatures(ctx context.Context) ([]string, error) {
	out := []string{}
	err := a.session.Acquire(ctx, "admin.active_features", func(ctx context.Context, h *sqldb.Handle) error {
		q, err := h.Render(activeFeaturesSQL)
		if err != nil {
			return err
		}
		return h.Conn.SelectContext(ctx, &out, q)
	})
	return out, err
}

// inTx commits when fn succeeds and rolls back otherwise.
func inTx(ctx context.Context, h *sqldb.Handle, fn func(tx *sqlx.Tx) error) error {
	tx, err := h.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	return tx.Commit()
}
