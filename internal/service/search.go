package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
	"github.com/Omarkam3l/Kathir-final/internal/port"
)

const (
	defaultSearchLimit = 8
	maxSearchLimit     = 50

	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
)

// Search is the filtered browse over sellable meals: text match, price range,
// category and allergen constraints. The embedding-based semantic ranking
// lives outside this service; text matching is the fallback path.
type Search struct {
	catalog   port.CatalogRepository
	favorites port.FavoriteRepository
	now       func() time.Time
}

func NewSearch(catalog port.CatalogRepository, favorites port.FavoriteRepository) *Search {
	return &Search{
		catalog:   catalog,
		favorites: favorites,
		now:       time.Now,
	}
}

type SearchRequest struct {
	Query          string
	RestaurantID   uuid.UUID
	RestaurantName string
	Category       string
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal

	// Meals must not contain any excluded allergen and must contain every
	// required one.
	ExcludeAllergens []string
	RequireAllergens []string

	Limit int    // default 8, capped at 50
	Sort  string // "relevance" (default) or "price_asc"
}

type SearchResult struct {
	Query       string
	Restaurant  string
	Meals       []domain.Meal
	FavoriteIDs map[uuid.UUID]bool
}

func (s *Search) SearchMeals(ctx context.Context, req SearchRequest) (SearchResult, error) {
	limit := normalizeLimit(req.Limit)

	filter := domain.MealFilter{
		Query:    req.Query,
		Category: req.Category,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		// Over-fetch so the allergen post-filter still fills the page.
		Limit: limit * 4,
	}

	restaurantName := req.RestaurantName
	if req.RestaurantID != uuid.Nil {
		filter.RestaurantIDs = []uuid.UUID{req.RestaurantID}
	} else if req.RestaurantName != "" {
		restaurant, err := s.catalog.FindRestaurantByName(ctx, req.RestaurantName)
		if err != nil {
			return SearchResult{}, fmt.Errorf("catalog.FindRestaurantByName: %w", err)
		}
		filter.RestaurantIDs = []uuid.UUID{restaurant.ID}
		restaurantName = restaurant.Name
	}

	meals, err := s.catalog.SearchMeals(ctx, filter, s.now())
	if err != nil {
		return SearchResult{}, fmt.Errorf("catalog.SearchMeals: %w", err)
	}

	meals = applyAllergenFilters(meals, req.ExcludeAllergens, req.RequireAllergens)
	meals = sortAndSlice(meals, req.Sort, limit)

	return SearchResult{
		Query:      req.Query,
		Restaurant: restaurantName,
		Meals:      meals,
	}, nil
}

// SearchFavorites applies the same filters intersected with the user's
// favorites set. An empty favorites set is a valid empty result.
func (s *Search) SearchFavorites(ctx context.Context, userID uuid.UUID, req SearchRequest) (SearchResult, error) {
	if userID == uuid.Nil {
		return SearchResult{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}

	favoriteIDs, err := s.favorites.ListFavoriteIDs(ctx, userID)
	if err != nil {
		return SearchResult{}, fmt.Errorf("favorites.ListFavoriteIDs: %w", err)
	}
	if len(favoriteIDs) == 0 {
		return SearchResult{Query: req.Query}, nil
	}

	limit := normalizeLimit(req.Limit)

	filter := domain.MealFilter{
		MealIDs:  favoriteIDs,
		Query:    req.Query,
		Category: req.Category,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Limit:    limit * 4,
	}

	meals, err := s.catalog.SearchMeals(ctx, filter, s.now())
	if err != nil {
		return SearchResult{}, fmt.Errorf("catalog.SearchMeals: %w", err)
	}

	meals = applyAllergenFilters(meals, req.ExcludeAllergens, req.RequireAllergens)
	meals = sortAndSlice(meals, req.Sort, limit)

	favoriteSet := make(map[uuid.UUID]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favoriteSet[id] = true
	}

	return SearchResult{
		Query:       req.Query,
		Meals:       meals,
		FavoriteIDs: favoriteSet,
	}, nil
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return defaultSearchLimit
	}
	return min(limit, maxSearchLimit)
}

func sortAndSlice(meals []domain.Meal, sortMode string, limit int) []domain.Meal {
	if sortMode == SortPriceAsc {
		sort.SliceStable(meals, func(i, j int) bool {
			return meals[i].Price.Amount.Cmp(meals[j].Price.Amount) < 0
		})
	}
	if len(meals) > limit {
		meals = meals[:limit]
	}
	return meals
}

// applyAllergenFilters post-filters meals by allergen constraints: none of
// the excluded allergens may be present, all of the required ones must be.
func applyAllergenFilters(meals []domain.Meal, exclude, require []string) []domain.Meal {
	if len(exclude) == 0 && len(require) == 0 {
		return meals
	}

	out := meals[:0]
	for _, meal := range meals {
		allergens := make(map[string]bool, len(meal.Allergens))
		for _, a := range meal.Allergens {
			allergens[strings.ToLower(a)] = true
		}

		if containsAny(allergens, exclude) {
			continue
		}
		if !containsAll(allergens, require) {
			continue
		}

		out = append(out, meal)
	}

	return out
}

func containsAny(set map[string]bool, keys []string) bool {
	for _, k := range keys {
		if set[strings.ToLower(k)] {
			return true
		}
	}
	return false
}

func containsAll(set map[string]bool, keys []string) bool {
	for _, k := range keys {
		if !set[strings.ToLower(k)] {
			return false
		}
	}
	return true
}
