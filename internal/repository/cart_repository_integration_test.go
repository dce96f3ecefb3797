package repository

import (
	"context"
	"testing"
	"time"

	"medcart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const cartSchema = `
	CREATE TABLE IF NOT EXISTS cart_lines (
		cart_id    TEXT        NOT NULL,
		product_id TEXT        NOT NULL,
		quantity   INTEGER     NOT NULL CHECK (quantity >= 1),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (cart_id, product_id)
	)
`

// setupTestPool starts a disposable PostgreSQL container with the cart
// schema applied.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, cartSchema)
	require.NoError(t, err)

	return pool
}

func TestCartRepository_SaveLoadDelete(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewCartRepository(pool, zerolog.Nop())
	ctx := context.Background()

	cartID := model.CartID("customer-42")

	// Empty cart loads as no lines.
	lines, err := repo.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Save and reload.
	err = repo.Save(ctx, cartID, []model.CartLine{
		{ProductID: "M001", Quantity: 3},
		{ProductID: "M002", Quantity: 1},
	})
	require.NoError(t, err)

	lines, err = repo.Load(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	byProduct := map[string]int{}
	for _, l := range lines {
		byProduct[l.ProductID] = l.Quantity
	}
	assert.Equal(t, 3, byProduct["M001"])
	assert.Equal(t, 1, byProduct["M002"])

	// Save replaces, never merges.
	err = repo.Save(ctx, cartID, []model.CartLine{{ProductID: "M001", Quantity: 5}})
	require.NoError(t, err)

	lines, err = repo.Load(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "M001", lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)

	// Other carts are untouched.
	otherID := model.CartID("customer-7")
	err = repo.Save(ctx, otherID, []model.CartLine{{ProductID: "M009", Quantity: 2}})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, cartID))

	lines, err = repo.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = repo.Load(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCartRepository_SaveEmptyClearsCart(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewCartRepository(pool, zerolog.Nop())
	ctx := context.Background()

	cartID := model.CartID("customer-42")

	require.NoError(t, repo.Save(ctx, cartID, []model.CartLine{{ProductID: "M001", Quantity: 2}}))
	require.NoError(t, repo.Save(ctx, cartID, nil))

	lines, err := repo.Load(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
