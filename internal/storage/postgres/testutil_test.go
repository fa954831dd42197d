package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"needlist/internal/storage/migrations"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// embedded migrations. Returns a cleanup function that must be called after
// tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := pgcontainer.Run(ctx, "postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "failed to run migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// seedWishlist inserts a wishlist row directly; the service itself never
// writes to this table.
func seedWishlist(t *testing.T, ctx context.Context, pool *Pool, id, owner, title, zip string, createdAt int64) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO wishlists (wishlist_id, owner_id, title, description, zip_code, created_at)
		VALUES ($1, $2, $3, NULL, $4, $5)
	`, id, owner, title, zip, createdAt)
	require.NoError(t, err, "failed to seed wishlist %s", id)
}

// seedItem inserts a wishlist item row directly.
func seedItem(t *testing.T, ctx context.Context, pool *Pool, id, wishlistID, title string, quantity int, fulfilled bool, createdAt int64) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO wishlist_items (item_id, wishlist_id, title, quantity, fulfilled, product_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NULL, $6)
	`, id, wishlistID, title, quantity, fulfilled, createdAt)
	require.NoError(t, err, "failed to seed item %s", id)
}
