package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/sqldb"
)

// DB describes one SQLite file: which tables to create and any seed SQL.
type DB struct {
	Tables []string
	Seed   []string
}

// Full is a DB carrying the whole schema plus seed statements.
func Full(seed ...string) DB { return DB{Tables: AllTables, Seed: seed} }

// Fixture is a set of SQLite files wired as main plus attached namespaces.
type Fixture struct {
	Dialect    sqldb.SQLite
	Descriptor domain.ConnectionDescriptor
	Session    *sqldb.Session
}

// SQLite creates the files under t.TempDir and returns a validated session
// logged in as "guest".
func SQLite(t testing.TB, main DB, attached map[string]DB) *Fixture {
	t.Helper()
	dir := t.TempDir()

	mainPath := filepath.Join(dir, "main.db")
	create(t, mainPath, main)

	attach := make(map[string]string, len(attached))
	for name, db := range attached {
		p := filepath.Join(dir, name+".db")
		create(t, p, db)
		attach[name] = p
	}

	f := &Fixture{
		Dialect: sqldb.SQLite{Attach: attach},
		Descriptor: domain.ConnectionDescriptor{
			Host:        "localhost",
			ServiceName: mainPath,
			User:        "guest",
		},
	}
	f.Session = sqldb.NewSession(f.Dialect)
	require.NoError(t, f.Session.Validate(context.Background(), f.Descriptor))
	t.Cleanup(func() { _ = f.Session.Close() })
	return f
}

// Resolve stores ns as the session's resolved namespace, bypassing the catalog.
func (f *Fixture) Resolve(t testing.TB, ns domain.Namespace) {
	t.Helper()
	var gen uint64
	require.NoError(t, f.Session.Acquire(context.Background(), "test.gen", func(_ context.Context, h *sqldb.Handle) error {
		gen = h.Gen
		return nil
	}))
	require.True(t, f.Session.SetNamespace(gen, &ns))
}

// Own is the identity's own namespace.
func Own(user string) domain.Namespace {
	return domain.Namespace{Name: domain.MustIdent(user), Own: true}
}

// Attached is a namespace reached through a qualifier.
func Attached(name string) domain.Namespace {
	return domain.Namespace{Name: domain.MustIdent(name)}
}

func create(t testing.TB, path string, want DB) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, tbl := range want.Tables {
		ddl, ok := DDL["sqlite"][tbl]
		require.Truef(t, ok, "unknown table %s", tbl)
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	for _, s := range want.Seed {
		_, err := db.Exec(s)
		require.NoErrorf(t, err, "seed %q", s)
	}
	// an empty file is not a database yet
	_, err = db.Exec(`PRAGMA user_version = 1`)
	require.NoError(t, err)
}
