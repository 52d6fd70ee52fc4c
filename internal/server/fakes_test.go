package server_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
)

// fakeStore is an in-memory stand-in for the pgx repositories, enough to
// drive the full handler stack without a database.
type fakeStore struct {
	mu sync.Mutex

	restaurants map[uuid.UUID]domain.Restaurant
	meals       map[uuid.UUID]domain.Meal
	favorites   map[uuid.UUID][]uuid.UUID
	lines       map[uuid.UUID]map[uuid.UUID]domain.CartLine

	err error // when set, every call fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		restaurants: make(map[uuid.UUID]domain.Restaurant),
		meals:       make(map[uuid.UUID]domain.Meal),
		favorites:   make(map[uuid.UUID][]uuid.UUID),
		lines:       make(map[uuid.UUID]map[uuid.UUID]domain.CartLine),
	}
}

func (f *fakeStore) addRestaurant(name string) domain.Restaurant {
	rest := domain.Restaurant{ID: uuid.New(), Name: name}
	f.restaurants[rest.ID] = rest
	return rest
}

func (f *fakeStore) addMeal(meal domain.Meal) domain.Meal {
	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}
	f.meals[meal.ID] = meal
	return meal
}

func (f *fakeStore) GetRestaurant(_ context.Context, id uuid.UUID) (domain.Restaurant, error) {
	if f.err != nil {
		return domain.Restaurant{}, f.err
	}
	rest, ok := f.restaurants[id]
	if !ok {
		return domain.Restaurant{}, domain.ErrRestaurantNotFound
	}
	return rest, nil
}

func (f *fakeStore) FindRestaurantByName(_ context.Context, pattern string) (domain.Restaurant, error) {
	if f.err != nil {
		return domain.Restaurant{}, f.err
	}
	for _, rest := range f.restaurants {
		if strings.Contains(strings.ToLower(rest.Name), strings.ToLower(pattern)) {
			return rest, nil
		}
	}
	return domain.Restaurant{}, domain.ErrRestaurantNotFound
}

func (f *fakeStore) ListRestaurantNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if rest, ok := f.restaurants[id]; ok {
			names[id] = rest.Name
		}
	}
	return names, nil
}

func (f *fakeStore) ListSellableMeals(_ context.Context, restaurantID uuid.UUID, asOf time.Time) ([]domain.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	var meals []domain.Meal
	for _, meal := range f.meals {
		if meal.RestaurantID == restaurantID && meal.Sellable(asOf) {
			meals = append(meals, meal)
		}
	}
	sortByPrice(meals)
	return meals, nil
}

func (f *fakeStore) SearchMeals(_ context.Context, filter domain.MealFilter, asOf time.Time) ([]domain.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}

	var meals []domain.Meal
	for _, meal := range f.meals {
		if !meal.Sellable(asOf) {
			continue
		}
		if len(filter.RestaurantIDs) > 0 && !containsID(filter.RestaurantIDs, meal.RestaurantID) {
			continue
		}
		if len(filter.MealIDs) > 0 && !containsID(filter.MealIDs, meal.ID) {
			continue
		}
		if filter.Query != "" && !matchesQuery(meal, filter.Query) {
			continue
		}
		if filter.Category != "" && meal.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && meal.Price.Amount.Cmp(*filter.MinPrice) < 0 {
			continue
		}
		if filter.MaxPrice != nil && meal.Price.Amount.Cmp(*filter.MaxPrice) > 0 {
			continue
		}
		meals = append(meals, meal)
	}

	sortByPrice(meals)
	if filter.Limit > 0 && len(meals) > filter.Limit {
		meals = meals[:filter.Limit]
	}
	return meals, nil
}

func (f *fakeStore) GetMeal(_ context.Context, id uuid.UUID) (domain.Meal, error) {
	if f.err != nil {
		return domain.Meal{}, f.err
	}
	meal, ok := f.meals[id]
	if !ok {
		return domain.Meal{}, domain.ErrMealNotFound
	}
	return meal, nil
}

func (f *fakeStore) GetMeals(_ context.Context, ids []uuid.UUID) ([]domain.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	var meals []domain.Meal
	for _, id := range ids {
		if meal, ok := f.meals[id]; ok {
			meals = append(meals, meal)
		}
	}
	return meals, nil
}

func (f *fakeStore) ListFavoriteIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.favorites[userID], nil
}

func (f *fakeStore) GetLines(_ context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var lines []domain.CartLine
	for _, line := range f.lines[userID] {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].CreatedAt.Before(lines[j].CreatedAt) })
	return lines, nil
}

func (f *fakeStore) GetLine(_ context.Context, userID, mealID uuid.UUID) (domain.CartLine, bool, error) {
	if f.err != nil {
		return domain.CartLine{}, false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	line, ok := f.lines[userID][mealID]
	return line, ok, nil
}

func (f *fakeStore) IncrementLine(_ context.Context, userID, mealID uuid.UUID, delta, stockCeiling int) (domain.CartLine, bool, error) {
	if f.err != nil {
		return domain.CartLine{}, false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lines[userID] == nil {
		f.lines[userID] = make(map[uuid.UUID]domain.CartLine)
	}

	line, exists := f.lines[userID][mealID]
	if line.Quantity+delta > stockCeiling {
		return domain.CartLine{}, false, domain.ErrInsufficientStock
	}

	now := time.Now()
	if !exists {
		line = domain.CartLine{UserID: userID, MealID: mealID, CreatedAt: now}
	}
	line.Quantity += delta
	line.UpdatedAt = now
	f.lines[userID][mealID] = line

	return line, !exists, nil
}

func sortByPrice(meals []domain.Meal) {
	sort.SliceStable(meals, func(i, j int) bool {
		return meals[i].Price.Amount.Cmp(meals[j].Price.Amount) < 0
	})
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func matchesQuery(meal domain.Meal, query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(meal.Title), query) ||
		strings.Contains(strings.ToLower(meal.Description), query) ||
		strings.Contains(strings.ToLower(meal.Category), query)
}
