package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Omarkam3l/Kathir-final/internal/port"
)

type favoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavorite(pool *pgxpool.Pool) port.FavoriteRepository {
	return &favoriteRepository{pool: pool}
}

func (r *favoriteRepository) ListFavoriteIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("userID is empty")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT meal_id FROM favorites WHERE user_id = $1`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
