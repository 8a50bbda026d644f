//go:build integration

package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"hotel_rating/internal/domain"
	"hotel_rating/internal/storage/hotels"
	"hotel_rating/internal/storage/schema"
	"hotel_rating/internal/storage/sqldb"
)

// setupPostgres starts a container where the hotel tables live in schema
// "hotelier" and the "guest" role may only read them.
func setupPostgres(t *testing.T) domain.ConnectionDescriptor {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("hotels"),
		postgres.WithUsername("hotel_admin"),
		postgres.WithPassword("adminpw"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "starting PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	admin := domain.ConnectionDescriptor{
		Host:        host,
		Port:        port.Port(),
		ServiceName: "hotels",
		User:        "hotel_admin",
		Password:    "adminpw",
	}
	dsn, err := sqldb.Postgres{SSLMode: "disable"}.DSN(admin)
	require.NoError(t, err)
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()
	// search_path is per connection; keep the whole setup on one
	db.SetMaxOpenConns(1)

	mustExec(t, db, "CREATE SCHEMA hotelier", "SET search_path TO hotelier")
	applySchema(t, db, "postgres")
	mustExec(t, db,
		"CREATE ROLE guest LOGIN PASSWORD 'guestpw'",
		"GRANT USAGE ON SCHEMA hotelier TO guest",
		"GRANT SELECT ON ALL TABLES IN SCHEMA hotelier TO guest",
	)

	guest := admin
	guest.User, guest.Password = "guest", "guestpw"
	return guest
}

func TestPostgres_FallbackRatingsAndElevatedAdmin(t *testing.T) {
	guest := setupPostgres(t)
	ctx := context.Background()

	sess := sqldb.NewSession(sqldb.Postgres{SSLMode: "disable"}, sqldb.WithElevatedUser("hotel_admin"))
	t.Cleanup(func() { _ = sess.Close() })
	resolver := schema.NewResolver(sess)

	require.NoError(t, sess.Validate(ctx, guest))
	c := resolver.Resolve(ctx)
	require.True(t, c.HasExpectedTables, c.DiagnosticMessage)
	assert.Equal(t, "hotelier", c.ResolvedNamespace)

	ratings := hotels.NewRatings(sess)
	hr, err := ratings.GetRating(ctx, "grand")
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza", hr.Name)
	assert.Equal(t, 4.5, hr.OverallScore)

	hr, err = ratings.GetRating(ctx, "QUIET")
	require.NoError(t, err)
	assert.Equal(t, 3.67, hr.OverallScore)
	assert.Equal(t, 3, hr.TotalReviews)

	reviews, err := ratings.GetReviews(ctx, "quiet")
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, domain.AnonymousReviewer, reviews[1].ReviewerName)

	threshold := 3.5
	found, err := hotels.NewSearch(sess).Search(ctx, "paris", domain.SearchCriteria{
		domain.CriterionCleanliness: &threshold,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Grand Plaza", found[0].Name)

	admin := hotels.NewAdmin(sess)
	_, err = admin.AddFeature(ctx, "Pool")
	require.Error(t, err, "guest has no INSERT privilege")

	require.NoError(t, sess.Elevate(ctx, "adminpw"))
	c = resolver.Resolve(ctx)
	require.True(t, c.HasExpectedTables, c.DiagnosticMessage)
	assert.Equal(t, "hotelier", c.ResolvedNamespace)

	id, err := admin.AddFeature(ctx, "Pool")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)

	seedID, err := admin.AddSeedWord(ctx, "Pool", "infinity pool", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seedID)

	require.NoError(t, sess.Restore(ctx))
	st := sess.Status()
	assert.False(t, st.Elevated)
	assert.Empty(t, st.Namespace, "namespace must be re-resolved after restore")
}
