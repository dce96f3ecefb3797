package repository

import (
	"context"
	"fmt"
	"time"

	"medcart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Load retrieves every line of the given cart, oldest first.
func (r *cartRepository) Load(ctx context.Context, cartID model.CartID) ([]model.CartLine, error) {
	query := `
		SELECT product_id, quantity, updated_at
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY updated_at, product_id
	`

	rows, err := r.pool.Query(ctx, query, string(cartID))
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", string(cartID)).Msg("failed to load cart lines")
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UpdatedAt); err != nil {
			r.logger.Error().Err(err).Str("cart_id", string(cartID)).Msg("failed to scan cart line")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", string(cartID)).
		Int("line_count", len(lines)).
		Msg("cart lines loaded")

	return lines, nil
}

// Save replaces the persisted lines of the cart in a single transaction
// so a crash can never leave a half-written cart behind.
func (r *cartRepository) Save(ctx context.Context, cartID model.CartID, lines []model.CartLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, string(cartID)); err != nil {
		r.logger.Error().Err(err).Str("cart_id", string(cartID)).Msg("failed to clear cart lines")
		return fmt.Errorf("failed to clear cart lines: %w", err)
	}

	if len(lines) > 0 {
		query := `
			INSERT INTO cart_lines (cart_id, product_id, quantity, updated_at)
			VALUES ($1, $2, $3, $4)
		`

		now := time.Now()
		batch := &pgx.Batch{}
		for _, line := range lines {
			updatedAt := line.UpdatedAt
			if updatedAt.IsZero() {
				updatedAt = now
			}
			batch.Queue(query, string(cartID), line.ProductID, line.Quantity, updatedAt)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < len(lines); i++ {
			if _, err = results.Exec(); err != nil {
				results.Close()
				r.logger.Error().
					Err(err).
					Str("cart_id", string(cartID)).
					Str("product_id", lines[i].ProductID).
					Msg("failed to insert cart line")
				return fmt.Errorf("failed to insert cart line: %w", err)
			}
		}
		if err = results.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("cart_id", string(cartID)).Msg("failed to commit transaction")
		return fmt.Errorf("failed to save cart lines: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", string(cartID)).
		Int("line_count", len(lines)).
		Msg("cart lines saved")

	return nil
}

// Delete removes every line of the given cart.
func (r *cartRepository) Delete(ctx context.Context, cartID model.CartID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, string(cartID)); err != nil {
		r.logger.Error().Err(err).Str("cart_id", string(cartID)).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	r.logger.Debug().Str("cart_id", string(cartID)).Msg("cart deleted")
	return nil
}
