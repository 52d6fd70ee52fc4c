package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
)

type CatalogRepository interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (domain.Restaurant, error)

	// FindRestaurantByName matches a case-insensitive partial name and
	// returns the first hit, or domain.ErrRestaurantNotFound.
	FindRestaurantByName(ctx context.Context, pattern string) (domain.Restaurant, error)
	ListRestaurantNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// ListSellableMeals returns the restaurant's meals that are active, in
	// stock, not expired as of asOf and positively priced, ordered by price
	// ascending.
	ListSellableMeals(ctx context.Context, restaurantID uuid.UUID, asOf time.Time) ([]domain.Meal, error)
	SearchMeals(ctx context.Context, filter domain.MealFilter, asOf time.Time) ([]domain.Meal, error)

	// GetMeal and GetMeals return meals regardless of sellability; callers
	// decide how to treat inactive, expired or out-of-stock rows.
	GetMeal(ctx context.Context, id uuid.UUID) (domain.Meal, error)
	GetMeals(ctx context.Context, ids []uuid.UUID) ([]domain.Meal, error)
}
