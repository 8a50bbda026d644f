package shared

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/sqldb"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	LogFile     string

	DBDialect  string
	DBHost     string
	DBPort     string
	DBService  string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	// SQLiteAttach maps namespace -> database file, from SQLITE_ATTACH="a=/x.db,b=/y.db".
	SQLiteAttach map[string]string

	ElevatedUser string
	ElevateRPS   float64

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Msg("ignoring non-integer value")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Msg("ignoring non-numeric value")
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		LogFile:      env("LOG_FILE", ""),
		DBDialect:    env("DB_DIALECT", "mysql"),
		DBHost:       env("DB_HOST", "localhost"),
		DBPort:       env("DB_PORT", ""),
		DBService:    env("DB_SERVICE", "hotels"),
		DBUser:       env("DB_USER", ""),
		DBPassword:   env("DB_PASSWORD", ""),
		DBSSLMode:    env("DB_SSLMODE", ""),
		SQLiteAttach: parseAttach(os.Getenv("SQLITE_ATTACH")),
		ElevatedUser: env("ELEVATED_USER", sqldb.DefaultElevatedUser),
		ElevateRPS:   atof("ELEVATE_RPS", 0.2),
		RedisAddr:    env("REDIS_ADDR", ""),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.DBUser == "" {
		log.Warn().Msg("DB_USER is empty; log in through the API before querying")
	}
	return c
}

// Descriptor is the connection the process logs in with at startup.
func (c Config) Descriptor() domain.ConnectionDescriptor {
	return domain.ConnectionDescriptor{
		Host:        c.DBHost,
		Port:        c.DBPort,
		ServiceName: c.DBService,
		User:        c.DBUser,
		Password:    c.DBPassword,
	}
}

func (c Config) Dialect() (sqldb.Dialect, error) {
	return sqldb.ParseDialect(c.DBDialect, c.SQLiteAttach, c.DBSSLMode)
}

func parseAttach(s string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, path, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
			log.Warn().Str("entry", part).Msg("ignoring malformed SQLITE_ATTACH entry")
			continue
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(path)
	}
	return out
}

// String lists the effective settings without secrets.
func (c Config) String() string {
	names := make([]string, 0, len(c.SQLiteAttach))
	for k := range c.SQLiteAttach {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("env=%s dialect=%s db=%s attach=%v redis=%q ttl=%s",
		c.AppEnv, c.DBDialect, c.Descriptor(), names, c.RedisAddr, c.CacheTTL)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
