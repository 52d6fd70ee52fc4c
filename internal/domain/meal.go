package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MealStatusActive = "active"

type Restaurant struct {
	ID   uuid.UUID
	Name string
}

// Meal is a purchasable unit at a specific restaurant, read as a snapshot per
// request and never mutated in-process.
type Meal struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Title        string
	Description  string
	Category     string
	Price        Money
	Stock        int
	Status       string
	ExpiresAt    time.Time
	Allergens    []string
}

// Sellable reports whether the meal can be sold as of the given instant:
// active, in stock, not expired, positively priced.
func (m Meal) Sellable(asOf time.Time) bool {
	return m.Status == MealStatusActive &&
		m.Stock > 0 &&
		m.ExpiresAt.After(asOf) &&
		m.Price.IsPositive()
}

// CandidateItem is a sellable meal tagged with the requesting user's
// favorite flag, the unit the allocator chooses from.
type CandidateItem struct {
	Meal
	IsFavorite bool
}

// MealFilter narrows a catalog search. Zero fields are ignored. Sellability
// (active, stock > 0, not expired, price > 0) is always applied by the store.
type MealFilter struct {
	RestaurantIDs []uuid.UUID
	MealIDs       []uuid.UUID
	Query         string // case-insensitive match on title, description or category
	Category      string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Limit         int
}
