package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"hotel_rating/internal/domain"
)

// CatalogEntry is one table visible to the current identity.
type CatalogEntry struct {
	Namespace string
	Table     string
}

// Dialect isolates everything that differs between backing stores: DSN format,
// identifier quoting, catalog access and error classification.
type Dialect interface {
	Name() string
	DriverName() string
	DefaultPort() string
	DSN(d domain.ConnectionDescriptor) (string, error)
	QuoteIdent(id domain.Ident) string
	// OwnQualifier prefixes tables of the identity's own namespace; "" leaves
	// them unqualified so the connection's default namespace applies.
	OwnQualifier() string
	// Catalog lists tables visible to the connection, ordered by namespace then table.
	Catalog(ctx context.Context, conn *sqlx.Conn) ([]CatalogEntry, error)
	// IsMissingObject reports errors meaning "object does not exist or is not visible".
	IsMissingObject(err error) bool
	// InitConn runs once per checked-out connection before any statement.
	InitConn(ctx context.Context, conn *sqlx.Conn) error
}

// ParseDialect maps a configuration name onto a dialect.
func ParseDialect(name string, sqliteAttach map[string]string, sslMode string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql", "mariadb":
		return MySQL{}, nil
	case "postgres", "postgresql", "pgx":
		return Postgres{SSLMode: sslMode}, nil
	case "sqlite", "sqlite3":
		return SQLite{Attach: sqliteAttach}, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", name)
}

// Qualify renders table t inside namespace ns.
func Qualify(d Dialect, ns domain.Namespace, t domain.Ident) string {
	if ns.Own {
		if q := d.OwnQualifier(); q != "" {
			return q + "." + d.QuoteIdent(t)
		}
		return d.QuoteIdent(t)
	}
	return d.QuoteIdent(ns.Name) + "." + d.QuoteIdent(t)
}

func quoteWith(q string, id domain.Ident) string {
	return q + strings.ReplaceAll(id.String(), q, q+q) + q
}

func scanCatalog(rows *sqlx.Rows) ([]CatalogEntry, error) {
	defer rows.Close()
	var out []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.Namespace, &e.Table); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
