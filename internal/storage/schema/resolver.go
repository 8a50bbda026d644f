// Package schema discovers where the hotel-rating tables live for the current
// identity and exposes the catalog for browsing.
package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/sqldb"
)

const probeSQL = "SELECT 1 FROM %s WHERE 1 = 0"

type Resolver struct {
	session *sqldb.Session
}

func NewResolver(s *sqldb.Session) *Resolver { return &Resolver{session: s} }

// Resolve probes the own namespace first and falls back to the first namespace,
// alphabetically, that exposes every expected table. The result is recorded
// in the session unless a transition happened meanwhile.
func (r *Resolver) Resolve(ctx context.Context) domain.SchemaCapability {
	var (
		capability domain.SchemaCapability
		resolved   *domain.Namespace
		gen        uint64
	)
	err := r.session.Acquire(ctx, "schema.resolve", func(ctx context.Context, h *sqldb.Handle) error {
		gen = h.Gen
		var err error
		capability, resolved, err = resolve(ctx, h)
		return err
	})
	// a failed resolution also drops any namespace from an earlier check
	if gen != 0 && !r.session.SetNamespace(gen, resolved) {
		log.Warn().Msg("session changed during schema resolution; result discarded")
	}
	if err != nil {
		capability.HasExpectedTables = false
		capability.ResolvedNamespace = ""
		capability.DiagnosticMessage = err.Error()
		log.Warn().Err(err).Msg("schema resolution aborted")
		return capability
	}
	log.Info().
		Bool("expected", capability.HasExpectedTables).
		Bool("any", capability.HasAnyTables).
		Str("namespace", capability.ResolvedNamespace).
		Msg("schema resolved")
	return capability
}

func resolve(ctx context.Context, h *sqldb.Handle) (domain.SchemaCapability, *domain.Namespace, error) {
	own := domain.OwnNamespace(h.Identity)
	ok, err := hasExpected(ctx, h, own)
	if err != nil {
		return domain.SchemaCapability{}, nil, err
	}
	if ok {
		return domain.SchemaCapability{
			HasExpectedTables: true,
			HasAnyTables:      true,
			ResolvedNamespace: h.Identity,
		}, &own, nil
	}

	entries, err := h.Dialect.Catalog(ctx, h.Conn)
	if err != nil {
		return domain.SchemaCapability{}, nil, fmt.Errorf("read catalog: %w", err)
	}
	capability := domain.SchemaCapability{
		HasAnyTables:        len(entries) > 0,
		AvailableNamespaces: namespaces(entries),
	}

	for _, name := range candidates(entries) {
		id, err := domain.ParseIdent(name)
		if err != nil {
			log.Debug().Str("namespace", name).Msg("skipping namespace with unsupported name")
			continue
		}
		ns := domain.Namespace{Name: id}
		ok, err := hasExpected(ctx, h, ns)
		if err != nil {
			return capability, nil, err
		}
		if ok {
			capability.HasExpectedTables = true
			capability.ResolvedNamespace = name
			return capability, &ns, nil
		}
	}

	if capability.HasAnyTables {
		capability.DiagnosticMessage = "expected tables not found in any accessible namespace"
	} else {
		capability.DiagnosticMessage = "no tables visible to " + h.Identity
	}
	return capability, nil, nil
}

// hasExpected probes every expected table in ns. A missing or hidden table
// yields false; any other failure aborts.
func hasExpected(ctx context.Context, h *sqldb.Handle, ns domain.Namespace) (bool, error) {
	for _, t := range domain.ExpectedTables {
		q := fmt.Sprintf(probeSQL, sqldb.Qualify(h.Dialect, ns, t))
		rows, err := h.Conn.QueryContext(ctx, q)
		if err == nil {
			err = rows.Err()
			rows.Close()
		}
		if err == nil {
			continue
		}
		if h.Dialect.IsMissingObject(err) {
			return false, nil
		}
		return false, fmt.Errorf("probe %s.%s: %w", ns, t, err)
	}
	return true, nil
}

// candidates returns namespaces listing a hotel table, sorted.
func candidates(entries []sqldb.CatalogEntry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if domain.TableHotel.EqualFold(e.Table) && !seen[e.Namespace] {
			seen[e.Namespace] = true
			out = append(out, e.Namespace)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

func namespaces(entries []sqldb.CatalogEntry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if !seen[e.Namespace] {
			seen[e.Namespace] = true
			out = append(out, e.Namespace)
		}
	}
	sort.Strings(out)
	return out
}
