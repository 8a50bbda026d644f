package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DIALECT", "")
	t.Setenv("ELEVATED_USER", "")
	c := Load()
	assert.Equal(t, "mysql", c.DBDialect)
	assert.Equal(t, "SYSTEM", c.ElevatedUser)
	assert.Equal(t, ":8080", c.HTTPAddr)

	d, err := c.Dialect()
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
}

func TestLoad_SQLite(t *testing.T) {
	t.Setenv("DB_DIALECT", "sqlite")
	t.Setenv("DB_SERVICE", "/data/main.db")
	t.Setenv("DB_USER", "guest")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SQLITE_ATTACH", "hotelier=/data/hotelier.db, broken ,audit=/data/audit.db")
	t.Setenv("CACHE_TTL_SECONDS", "60")

	c := Load()
	assert.Equal(t, map[string]string{"hotelier": "/data/hotelier.db", "audit": "/data/audit.db"}, c.SQLiteAttach)
	assert.Equal(t, "/data/main.db", c.Descriptor().ServiceName)
	assert.Equal(t, 60.0, c.CacheTTL.Seconds())
	assert.NotContains(t, c.String(), "secret")

	d, err := c.Dialect()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}
