package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
	"github.com/Omarkam3l/Kathir-final/internal/port"
)

type cartRepository struct {
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{pool: pool}
}

func (r *cartRepository) GetLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("userID is empty")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT user_id, meal_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanCartLine: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *cartRepository) GetLine(ctx context.Context, userID, mealID uuid.UUID) (domain.CartLine, bool, error) {
	if userID == uuid.Nil {
		return domain.CartLine{}, false, fmt.Errorf("userID is empty")
	}

	row := r.pool.QueryRow(ctx, `
		SELECT user_id, meal_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND meal_id = $2`,
		userID, mealID,
	)

	line, err := scanCartLine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartLine{}, false, nil
	}
	if err != nil {
		return domain.CartLine{}, false, fmt.Errorf("scanCartLine: %w", err)
	}

	return line, true, nil
}

type incrementResult struct {
	line    domain.CartLine
	created bool
}

// IncrementLine accumulates atomically: the ceiling check lives inside the
// upsert's conflict arm, so two concurrent adds for the same (user, meal)
// pair cannot both pass it — a locked SELECT would miss a row the other
// transaction is still inserting. Zero rows back means the ceiling held.
func (r *cartRepository) IncrementLine(ctx context.Context, userID, mealID uuid.UUID, delta, stockCeiling int) (domain.CartLine, bool, error) {
	if userID == uuid.Nil {
		return domain.CartLine{}, false, fmt.Errorf("userID is empty")
	}
	if delta < 1 {
		return domain.CartLine{}, false, fmt.Errorf("delta[%d] must be >= 1", delta)
	}
	// The WHERE guard only covers the conflict arm; a fresh insert must be
	// checked here.
	if delta > stockCeiling {
		return domain.CartLine{}, false, fmt.Errorf("%w: only %d available, cart already has %d",
			domain.ErrInsufficientStock, stockCeiling, 0)
	}

	result, err := withTx(ctx, r.pool, func(tx pgx.Tx) (incrementResult, error) {
		row := tx.QueryRow(ctx, `
			INSERT INTO cart_items (user_id, meal_id, quantity, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			ON CONFLICT (user_id, meal_id) DO UPDATE
			SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
			WHERE cart_items.quantity + EXCLUDED.quantity <= $4
			RETURNING user_id, meal_id, quantity, created_at, updated_at, (xmax = 0)`,
			userID, mealID, delta, stockCeiling,
		)

		var (
			line    domain.CartLine
			created bool
		)
		err := row.Scan(&line.UserID, &line.MealID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt, &created)
		if errors.Is(err, pgx.ErrNoRows) {
			var current int
			if err := tx.QueryRow(ctx,
				`SELECT quantity FROM cart_items WHERE user_id = $1 AND meal_id = $2`,
				userID, mealID,
			).Scan(&current); err != nil {
				return incrementResult{}, fmt.Errorf("tx.QueryRow quantity: %w", err)
			}
			return incrementResult{}, fmt.Errorf("%w: only %d available, cart already has %d",
				domain.ErrInsufficientStock, stockCeiling, current)
		}
		if err != nil {
			return incrementResult{}, fmt.Errorf("row.Scan: %w", err)
		}

		return incrementResult{line: line, created: created}, nil
	})
	if err != nil {
		return domain.CartLine{}, false, err
	}

	return result.line, result.created, nil
}

func scanCartLine(row pgx.Row) (domain.CartLine, error) {
	var line domain.CartLine
	err := row.Scan(&line.UserID, &line.MealID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return domain.CartLine{}, err
	}
	return line, nil
}
