package sqldb

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"hotel_rating/internal/domain"
)

// MySQL maps namespaces onto MySQL databases. The descriptor's service name is
// the default database of the connection.
type MySQL struct {
	DialTimeout time.Duration
}

func (MySQL) Name() string         { return "mysql" }
func (MySQL) DriverName() string   { return "mysql" }
func (MySQL) DefaultPort() string  { return "3306" }
func (MySQL) OwnQualifier() string { return "" }

func (m MySQL) DSN(d domain.ConnectionDescriptor) (string, error) {
	port := d.Port
	if port == "" {
		port = m.DefaultPort()
	}
	timeout := m.DialTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.Host, port)
	cfg.DBName = d.ServiceName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = timeout
	return cfg.FormatDSN(), nil
}

func (MySQL) QuoteIdent(id domain.Ident) string { return quoteWith("`", id) }

const mysqlCatalogSQL = `
SELECT table_schema AS namespace, table_name AS tbl
FROM information_schema.tables
WHERE table_schema NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
ORDER BY table_schema, table_name`

func (MySQL) Catalog(ctx context.Context, conn *sqlx.Conn) ([]CatalogEntry, error) {
	rows, err := conn.QueryxContext(ctx, mysqlCatalogSQL)
	if err != nil {
		return nil, err
	}
	return scanCatalog(rows)
}

// MySQL server error numbers meaning the object is absent or hidden from us.
const (
	erDBAccessDenied    = 1044
	erNoDBSelected      = 1046
	erBadDB             = 1049
	erTableAccessDenied = 1142
	erNoSuchTable       = 1146
)

func (MySQL) IsMissingObject(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	switch me.Number {
	case erDBAccessDenied, erNoDBSelected, erBadDB, erTableAccessDenied, erNoSuchTable:
		return true
	}
	return false
}

func (MySQL) InitConn(context.Context, *sqlx.Conn) error { return nil }
