package sqldb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"

	"hotel_rating/internal/domain"
)

// SQLite is the embedded mode. The service name is the path of the main
// database file; every entry of Attach (namespace -> file) is attached to each
// connection so other namespaces are reachable as "<namespace>.<table>".
// SQLite has no authentication, so identities are labels only.
type SQLite struct {
	Attach map[string]string
}

func (SQLite) Name() string         { return "sqlite" }
func (SQLite) DriverName() string   { return "sqlite" }
func (SQLite) DefaultPort() string  { return "" }
func (SQLite) OwnQualifier() string { return "main" }

func (SQLite) DSN(d domain.ConnectionDescriptor) (string, error) {
	if strings.ContainsAny(d.ServiceName, "?#") {
		return "", fmt.Errorf("sqlite path %q must not contain '?' or '#'", d.ServiceName)
	}
	return d.ServiceName + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
}

func (SQLite) QuoteIdent(id domain.Ident) string { return quoteWith(`"`, id) }

func (s SQLite) Catalog(ctx context.Context, conn *sqlx.Conn) ([]CatalogEntry, error) {
	names, err := attachedNames(ctx, conn)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var out []CatalogEntry
	for _, name := range names {
		if name == "temp" {
			continue
		}
		ns, err := domain.ParseIdent(name)
		if err != nil {
			continue
		}
		rows, err := conn.QueryxContext(ctx, fmt.Sprintf(
			`SELECT ? AS namespace, name AS tbl FROM %s.sqlite_master
			 WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite!_%%' ESCAPE '!'
			 ORDER BY name`, s.QuoteIdent(ns)), name)
		if err != nil {
			return nil, err
		}
		entries, err := scanCatalog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

func (SQLite) IsMissingObject(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "unknown database")
}

// InitConn attaches the configured namespaces that this connection lacks.
func (s SQLite) InitConn(ctx context.Context, conn *sqlx.Conn) error {
	if len(s.Attach) == 0 {
		return nil
	}
	names, err := attachedNames(ctx, conn)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[strings.ToLower(n)] = true
	}

	keys := make([]string, 0, len(s.Attach))
	for k := range s.Attach {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if have[strings.ToLower(k)] {
			continue
		}
		ns, err := domain.ParseIdent(k)
		if err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS "+s.QuoteIdent(ns), s.Attach[k]); err != nil {
			return fmt.Errorf("attach %s: %w", k, err)
		}
	}
	return nil
}

func attachedNames(ctx context.Context, conn *sqlx.Conn) ([]string, error) {
	var names []string
	if err := conn.SelectContext(ctx, &names, `SELECT name FROM pragma_database_list`); err != nil {
		return nil, err
	}
	return names, nil
}
