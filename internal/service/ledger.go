package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
	"github.com/Omarkam3l/Kathir-final/internal/port"
)

// Ledger owns the authoritative persisted cart: validated single-item adds
// and the annotated rendering of the current cart.
type Ledger struct {
	catalog port.CatalogRepository
	carts   port.CartRepository
	now     func() time.Time
}

func NewLedger(catalog port.CatalogRepository, carts port.CartRepository) *Ledger {
	return &Ledger{
		catalog: catalog,
		carts:   carts,
		now:     time.Now,
	}
}

type AddResult struct {
	Action    string // "added" or "updated"
	Line      domain.CartLine
	Meal      domain.Meal
	LineTotal domain.Money
}

// AddItem validates the meal and accumulates quantity onto the user's cart
// line. The add is all-or-nothing: exceeding stock rejects the whole delta
// and leaves the existing line untouched.
func (l *Ledger) AddItem(ctx context.Context, userID, mealID uuid.UUID, quantity int) (AddResult, error) {
	if userID == uuid.Nil {
		return AddResult{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	if mealID == uuid.Nil {
		return AddResult{}, fmt.Errorf("%w: meal_id is required", domain.ErrInvalidArgument)
	}
	if quantity < 1 {
		return AddResult{}, fmt.Errorf("%w: quantity must be >= 1", domain.ErrInvalidArgument)
	}

	meal, err := l.catalog.GetMeal(ctx, mealID)
	if err != nil {
		return AddResult{}, fmt.Errorf("catalog.GetMeal: %w", err)
	}

	switch {
	case meal.Status != domain.MealStatusActive:
		return AddResult{}, fmt.Errorf("%w (status: %s)", domain.ErrMealUnavailable, meal.Status)
	case !meal.ExpiresAt.After(l.now()):
		return AddResult{}, domain.ErrMealExpired
	case meal.Stock <= 0:
		return AddResult{}, domain.ErrOutOfStock
	}

	// The repository re-checks the ceiling atomically in the upsert; this
	// read only produces the friendlier error message.
	existing, _, err := l.carts.GetLine(ctx, userID, mealID)
	if err != nil {
		return AddResult{}, fmt.Errorf("carts.GetLine: %w", err)
	}
	if existing.Quantity+quantity > meal.Stock {
		return AddResult{}, fmt.Errorf("%w: only %d available, cart already has %d",
			domain.ErrInsufficientStock, meal.Stock, existing.Quantity)
	}

	line, created, err := l.carts.IncrementLine(ctx, userID, mealID, quantity, meal.Stock)
	if err != nil {
		return AddResult{}, fmt.Errorf("carts.IncrementLine: %w", err)
	}

	action := "updated"
	if created {
		action = "added"
	}

	return AddResult{
		Action:    action,
		Line:      line,
		Meal:      meal,
		LineTotal: meal.Price.MulInt(line.Quantity),
	}, nil
}

type RenderOptions struct {
	IncludeStale bool      // fold stale lines into the priced list
	RestaurantID uuid.UUID // optional filter
}

// RenderCart classifies each persisted line against the live catalog. Lines
// whose meal no longer resolves are dropped silently; stale lines (expired,
// inactive, out of stock) are listed separately unless IncludeStale is set.
func (l *Ledger) RenderCart(ctx context.Context, userID uuid.UUID, opts RenderOptions) (domain.CartView, error) {
	if userID == uuid.Nil {
		return domain.CartView{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}

	lines, err := l.carts.GetLines(ctx, userID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("carts.GetLines: %w", err)
	}
	if len(lines) == 0 {
		return domain.CartView{
			UserID:  userID,
			Message: "Your cart is empty.",
		}, nil
	}

	mealIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		mealIDs = append(mealIDs, line.MealID)
	}

	meals, err := l.catalog.GetMeals(ctx, mealIDs)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("catalog.GetMeals: %w", err)
	}

	mealsByID := make(map[uuid.UUID]domain.Meal, len(meals))
	restaurantIDs := make([]uuid.UUID, 0, len(meals))
	for _, meal := range meals {
		if opts.RestaurantID != uuid.Nil && meal.RestaurantID != opts.RestaurantID {
			continue
		}
		mealsByID[meal.ID] = meal
		restaurantIDs = append(restaurantIDs, meal.RestaurantID)
	}

	restaurantNames, err := l.catalog.ListRestaurantNames(ctx, restaurantIDs)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("catalog.ListRestaurantNames: %w", err)
	}

	view := domain.CartView{UserID: userID}
	now := l.now()

	var zeroCurrencySet bool
	for _, line := range lines {
		meal, ok := mealsByID[line.MealID]
		if !ok {
			continue // filtered out or deleted from the catalog
		}
		if !zeroCurrencySet {
			view.Total = domain.ZeroMoney(meal.Price.Currency)
			zeroCurrencySet = true
		}

		viewLine := domain.CartViewLine{
			MealID:         meal.ID,
			Title:          meal.Title,
			Category:       meal.Category,
			RestaurantName: restaurantNames[meal.RestaurantID],
			UnitPrice:      meal.Price,
			Quantity:       line.Quantity,
			Subtotal:       meal.Price.MulInt(line.Quantity),
			AvailableStock: meal.Stock,
			AddedAt:        line.CreatedAt,
			StaleReason:    staleReason(meal, now),
		}

		if viewLine.StaleReason != "" {
			view.StaleLines = append(view.StaleLines, viewLine)
			if opts.IncludeStale {
				view.Lines = append(view.Lines, viewLine)
				view.Total = view.Total.Add(viewLine.Subtotal)
			}
			continue
		}

		if line.Quantity > meal.Stock {
			viewLine.Warning = fmt.Sprintf("Only %d in stock, you have %d in cart", meal.Stock, line.Quantity)
		}

		view.Lines = append(view.Lines, viewLine)
		view.Total = view.Total.Add(viewLine.Subtotal)
		view.TotalQuantity += line.Quantity
	}

	view.Message = renderMessage(view)

	return view, nil
}

func staleReason(meal domain.Meal, asOf time.Time) string {
	switch {
	case !meal.ExpiresAt.After(asOf):
		return domain.StaleExpired
	case meal.Stock <= 0:
		return domain.StaleOutOfStock
	case meal.Status != domain.MealStatusActive:
		return domain.StaleInactive
	default:
		return ""
	}
}

func renderMessage(view domain.CartView) string {
	activeCount := 0
	for _, line := range view.Lines {
		if line.StaleReason == "" {
			activeCount++
		}
	}

	switch {
	case activeCount == 0 && len(view.StaleLines) == 0:
		return "Your cart is empty after filtering."
	case activeCount == 0:
		return fmt.Sprintf("Your cart has %d item(s) that are no longer available; it is effectively empty.", len(view.StaleLines))
	case len(view.StaleLines) > 0:
		return fmt.Sprintf("You have %d item(s) (%d portions) totalling %s. %d stale item(s).",
			activeCount, view.TotalQuantity, view.Total, len(view.StaleLines))
	default:
		return fmt.Sprintf("You have %d item(s) (%d portions) totalling %s.",
			activeCount, view.TotalQuantity, view.Total)
	}
}
