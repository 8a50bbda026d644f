package schema

import (
	"context"
	"fmt"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/sqldb"
)

// MaxTableRows caps TableData.
const MaxTableRows = 1000

// Explorer browses whatever the current identity can see in the catalog.
type Explorer struct {
	session *sqldb.Session
}

func NewExplorer(s *sqldb.Session) *Explorer { return &Explorer{session: s} }

func (e *Explorer) Namespaces(ctx context.Context) ([]domain.NamespaceTables, error) {
	var out []domain.NamespaceTables
	err := e.session.Acquire(ctx, "explorer.namespaces", func(ctx context.Context, h *sqldb.Handle) error {
		entries, err := h.Dialect.Catalog(ctx, h.Conn)
		if err != nil {
			return err
		}
		out = group(entries)
		return nil
	})
	return out, err
}

// TableData returns the first MaxTableRows rows of namespace.table. Both names
// must appear in the catalog before they reach statement text.
func (e *Explorer) TableData(ctx context.Context, namespace, table string) (domain.TableData, error) {
	const op = "explorer.table_data"
	var out domain.TableData
	err := e.session.Acquire(ctx, op, func(ctx context.Context, h *sqldb.Handle) error {
		entries, err := h.Dialect.Catalog(ctx, h.Conn)
		if err != nil {
			return err
		}
		ns, tbl, ok := lookup(entries, namespace, table)
		if !ok {
			return domain.E(domain.KindNotFound, op, fmt.Errorf("%s.%s: %w", namespace, table, domain.ErrNotFound))
		}
		q := fmt.Sprintf("SELECT * FROM %s LIMIT %d", sqldb.Qualify(h.Dialect, domain.Namespace{Name: ns}, tbl), MaxTableRows)
		rows, err := h.Conn.QueryxContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		out.Columns = cols
		out.Rows = [][]any{}
		for rows.Next() {
			vals, err := rows.SliceScan()
			if err != nil {
				return err
			}
			for i, v := range vals {
				if b, ok := v.([]byte); ok {
					vals[i] = string(b)
				}
			}
			out.Rows = append(out.Rows, vals)
		}
		return rows.Err()
	})
	return out, err
}

func group(entries []sqldb.CatalogEntry) []domain.NamespaceTables {
	out := []domain.NamespaceTables{}
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].Namespace == e.Namespace {
			out[n-1].Tables = append(out[n-1].Tables, e.Table)
			continue
		}
		out = append(out, domain.NamespaceTables{Namespace: e.Namespace, Tables: []string{e.Table}})
	}
	return out
}

// lookup matches the requested names against the catalog and returns the
// catalog's own spelling.
func lookup(entries []sqldb.CatalogEntry, namespace, table string) (domain.Ident, domain.Ident, bool) {
	for _, e := range entries {
		if e.Namespace != namespace || e.Table != table {
			continue
		}
		ns, err := domain.ParseIdent(e.Namespace)
		if err != nil {
			return domain.Ident{}, domain.Ident{}, false
		}
		tbl, err := domain.ParseIdent(e.Table)
		if err != nil {
			return domain.Ident{}, domain.Ident{}, false
		}
		return ns, tbl, true
	}
	return domain.Ident{}, domain.Ident{}, false
}
