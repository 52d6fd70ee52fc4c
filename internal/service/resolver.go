package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
	"github.com/Omarkam3l/Kathir-final/internal/port"
)

// Resolver turns a restaurant reference and an optional user reference into
// the candidate item set the allocator chooses from: sellable meals ordered
// by price ascending, each tagged with the user's favorite flag.
type Resolver struct {
	catalog   port.CatalogRepository
	favorites port.FavoriteRepository
	now       func() time.Time
}

func NewResolver(catalog port.CatalogRepository, favorites port.FavoriteRepository) *Resolver {
	return &Resolver{
		catalog:   catalog,
		favorites: favorites,
		now:       time.Now,
	}
}

type ResolveRequest struct {
	RestaurantID   uuid.UUID // takes precedence over RestaurantName
	RestaurantName string    // case-insensitive partial match
	UserID         uuid.UUID // optional; favorites are fetched when set
	PreferredIDs   []uuid.UUID
}

// Resolve is a pure read projection with no side effects. Meals that are
// inactive, out of stock, expired or non-positively priced are silently
// excluded by the store; an empty remainder is domain.ErrEmptyCatalog.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) ([]domain.CandidateItem, domain.Restaurant, error) {
	restaurant, err := r.resolveRestaurant(ctx, req)
	if err != nil {
		return nil, domain.Restaurant{}, err
	}

	meals, err := r.catalog.ListSellableMeals(ctx, restaurant.ID, r.now())
	if err != nil {
		return nil, domain.Restaurant{}, fmt.Errorf("catalog.ListSellableMeals: %w", err)
	}
	if len(meals) == 0 {
		return nil, domain.Restaurant{}, domain.ErrEmptyCatalog
	}

	favoriteSet, err := r.favoriteSet(ctx, req)
	if err != nil {
		return nil, domain.Restaurant{}, err
	}

	candidates := make([]domain.CandidateItem, 0, len(meals))
	for _, meal := range meals {
		candidates = append(candidates, domain.CandidateItem{
			Meal:       meal,
			IsFavorite: favoriteSet[meal.ID],
		})
	}

	return candidates, restaurant, nil
}

func (r *Resolver) resolveRestaurant(ctx context.Context, req ResolveRequest) (domain.Restaurant, error) {
	switch {
	case req.RestaurantID != uuid.Nil:
		restaurant, err := r.catalog.GetRestaurant(ctx, req.RestaurantID)
		if err != nil {
			return domain.Restaurant{}, fmt.Errorf("catalog.GetRestaurant: %w", err)
		}
		return restaurant, nil

	case req.RestaurantName != "":
		restaurant, err := r.catalog.FindRestaurantByName(ctx, req.RestaurantName)
		if err != nil {
			return domain.Restaurant{}, fmt.Errorf("catalog.FindRestaurantByName: %w", err)
		}
		return restaurant, nil

	default:
		return domain.Restaurant{}, fmt.Errorf("%w: a restaurant is required (provide restaurant_id or restaurant_name)", domain.ErrInvalidArgument)
	}
}

// favoriteSet merges the user's stored favorites with any explicitly
// preferred meal ids.
func (r *Resolver) favoriteSet(ctx context.Context, req ResolveRequest) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(req.PreferredIDs))
	for _, id := range req.PreferredIDs {
		set[id] = true
	}

	if req.UserID != uuid.Nil {
		ids, err := r.favorites.ListFavoriteIDs(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("favorites.ListFavoriteIDs: %w", err)
		}
		for _, id := range ids {
			set[id] = true
		}
	}

	return set, nil
}
