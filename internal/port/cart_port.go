package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
)

type CartRepository interface {
	GetLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	GetLine(ctx context.Context, userID, mealID uuid.UUID) (domain.CartLine, bool, error)

	// IncrementLine atomically adds delta to the (userID, mealID) line,
	// creating it if absent. The increment is rejected with
	// domain.ErrInsufficientStock when the resulting quantity would exceed
	// stockCeiling; concurrent adds for the same pair are serialized by the
	// store. Returns the written line and whether it was newly created.
	IncrementLine(ctx context.Context, userID, mealID uuid.UUID, delta, stockCeiling int) (domain.CartLine, bool, error)
}
