package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/currency"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
	"github.com/Omarkam3l/Kathir-final/internal/port"
)

const mealColumns = `id, restaurant_id, title, description, category,
	price_amount, price_currency, quantity_available, status, expires_at, allergens`

type catalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) GetRestaurant(ctx context.Context, id uuid.UUID) (domain.Restaurant, error) {
	if id == uuid.Nil {
		return domain.Restaurant{}, fmt.Errorf("restaurant id is empty")
	}

	var rest domain.Restaurant
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM restaurants WHERE id = $1`, id,
	).Scan(&rest.ID, &rest.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Restaurant{}, domain.ErrRestaurantNotFound
	}
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return rest, nil
}

func (r *catalogRepository) FindRestaurantByName(ctx context.Context, pattern string) (domain.Restaurant, error) {
	if pattern == "" {
		return domain.Restaurant{}, fmt.Errorf("pattern is empty")
	}

	var rest domain.Restaurant
	err := r.pool.QueryRow(ctx, `
		SELECT id, name FROM restaurants
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 1`,
		pattern,
	).Scan(&rest.ID, &rest.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Restaurant{}, fmt.Errorf("%w: no restaurant matching %q", domain.ErrRestaurantNotFound, pattern)
	}
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return rest, nil
}

func (r *catalogRepository) ListRestaurantNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM restaurants WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		names[id] = name
	}

	return names, rows.Err()
}

func (r *catalogRepository) ListSellableMeals(ctx context.Context, restaurantID uuid.UUID, asOf time.Time) ([]domain.Meal, error) {
	if restaurantID == uuid.Nil {
		return nil, fmt.Errorf("restaurantID is empty")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+mealColumns+`
		FROM meals
		WHERE restaurant_id = $1
		  AND status = 'active'
		  AND quantity_available > 0
		  AND expires_at > $2
		  AND price_amount > 0
		ORDER BY price_amount`,
		restaurantID, asOf,
	)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectMeals(rows)
}

func (r *catalogRepository) SearchMeals(ctx context.Context, filter domain.MealFilter, asOf time.Time) ([]domain.Meal, error) {
	var (
		conds = []string{"status = 'active'", "quantity_available > 0", "price_amount > 0"}
		args  = []any{asOf}
	)
	conds = append(conds, "expires_at > $1")

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.RestaurantIDs) > 0 {
		conds = append(conds, "restaurant_id = ANY("+arg(filter.RestaurantIDs)+")")
	}
	if len(filter.MealIDs) > 0 {
		conds = append(conds, "id = ANY("+arg(filter.MealIDs)+")")
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+" OR category ILIKE "+p+")")
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price_amount >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price_amount <= "+arg(*filter.MaxPrice))
	}

	query := `SELECT ` + mealColumns + ` FROM meals WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY price_amount`
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectMeals(rows)
}

func (r *catalogRepository) GetMeal(ctx context.Context, id uuid.UUID) (domain.Meal, error) {
	if id == uuid.Nil {
		return domain.Meal{}, fmt.Errorf("meal id is empty")
	}

	row := r.pool.QueryRow(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = $1`, id,
	)

	meal, err := scanMeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Meal{}, fmt.Errorf("%w: %s", domain.ErrMealNotFound, id)
	}
	if err != nil {
		return domain.Meal{}, fmt.Errorf("scanMeal: %w", err)
	}

	return meal, nil
}

func (r *catalogRepository) GetMeals(ctx context.Context, ids []uuid.UUID) ([]domain.Meal, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectMeals(rows)
}

func scanMeal(row pgx.Row) (domain.Meal, error) {
	var (
		m             domain.Meal
		priceCurrency string
	)
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Title, &m.Description, &m.Category,
		&m.Price.Amount, &priceCurrency, &m.Stock, &m.Status, &m.ExpiresAt, &m.Allergens)
	if err != nil {
		return domain.Meal{}, err
	}

	parsedCurrency, err := currency.ParseISO(priceCurrency)
	if err != nil {
		return domain.Meal{}, fmt.Errorf("currency[%s] is not valid: %w", priceCurrency, err)
	}
	m.Price.Currency = parsedCurrency

	return m, nil
}

func collectMeals(rows pgx.Rows) ([]domain.Meal, error) {
	var meals []domain.Meal

	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanMeal: %w", err)
		}
		meals = append(meals, meal)
	}

	return meals, rows.Err()
}
