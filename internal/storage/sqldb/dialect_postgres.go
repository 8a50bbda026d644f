package sqldb

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"hotel_rating/internal/domain"
)

// Postgres maps namespaces onto schemas; the service name is the database.
// Unqualified names follow the role's search_path ("$user", public).
type Postgres struct {
	SSLMode        string
	ConnectTimeout time.Duration
}

func (Postgres) Name() string         { return "postgres" }
func (Postgres) DriverName() string   { return "pgx" }
func (Postgres) DefaultPort() string  { return "5432" }
func (Postgres) OwnQualifier() string { return "" }

func (p Postgres) DSN(d domain.ConnectionDescriptor) (string, error) {
	port := d.Port
	if port == "" {
		port = p.DefaultPort()
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "prefer"
	}
	timeout := p.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	q := url.Values{}
	q.Set("sslmode", ssl)
	q.Set("connect_timeout", strconv.Itoa(int(timeout.Seconds())))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, port),
		Path:     "/" + d.ServiceName,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func (Postgres) QuoteIdent(id domain.Ident) string { return quoteWith(`"`, id) }

const postgresCatalogSQL = `
SELECT table_schema AS namespace, table_name AS tbl
FROM information_schema.tables
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
  AND table_schema NOT LIKE 'pg_toast%'
ORDER BY table_schema, table_name`

func (Postgres) Catalog(ctx context.Context, conn *sqlx.Conn) ([]CatalogEntry, error) {
	rows, err := conn.QueryxContext(ctx, postgresCatalogSQL)
	if err != nil {
		return nil, err
	}
	return scanCatalog(rows)
}

func (Postgres) IsMissingObject(err error) bool {
	var pe *pgconn.PgError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case pgerrcode.UndefinedTable, pgerrcode.InvalidSchemaName, pgerrcode.InsufficientPrivilege:
		return true
	}
	return false
}

func (Postgres) InitConn(context.Context, *sqlx.Conn) error { return nil }
