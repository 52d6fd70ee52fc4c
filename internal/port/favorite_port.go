package port

import (
	"context"

	"github.com/google/uuid"
)

type FavoriteRepository interface {
	ListFavoriteIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
